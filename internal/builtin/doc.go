// Package builtin holds the task specializations the engine itself relies
// on: the Empty sentinel used for workflow start/final tasks, the NoTask
// marker that ends upstream discovery, indexed selection, and the
// Switch/IfThen branching tasks.
package builtin
