// Package resource provides the identity and naming primitive shared by
// everything that can be scheduled or connected, plus two specializations:
// FileResource (a path on disk) and ExecutableResource (an external
// program that can be resolved and run).
//
// The busy flag toggled by Lock and Unlock is advisory only. Nothing in the
// engine blocks on it; callers sharing a resource between tasks serialize
// their use themselves.
package resource
