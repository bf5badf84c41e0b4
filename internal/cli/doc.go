// Package cli is the task driver: it turns every registered task kind into
// a subcommand, declares one flag per workflow input, and hands the parsed
// option bag to the app for execution. It also handles process-level
// concerns like exit codes.
package cli
