// Package storage provides JSON-based persistence for the posted update keys.
//
// The state file is a JSON array of strings, rewritten in full after every
// successful delivery. Writes go to a temporary file in the same directory which
// is then renamed over the target, so readers never observe a partial file.
// Only one process should use a given state file at a time.
package storage
