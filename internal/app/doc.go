// Package app contains the core application logic. It defines the App
// struct, its configuration, and the run lifecycle of a single workflow,
// decoupled from any specific entrypoint like a CLI.
package app
