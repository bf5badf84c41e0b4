// Package registry maps task kinds to the factories that build them.
//
// Modules compiled into the binary register their kinds at startup; the
// CLI then builds tasks by kind and lists the kinds as subcommands. There
// is no dynamic discovery: the set of kinds is fixed when the Registry is
// populated, and registering the same kind twice is a programming error.
package registry
