// Package value holds the helpers that move cty values across the edges of
// the engine: command-line literals and option files on the way in, Go
// values and rendered text, JSON or YAML on the way out.
package value
