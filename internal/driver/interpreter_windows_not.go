//go:build !windows

package driver

const (
	defaultShell = "sh"
	// Newline terminates lines written to the interpreter and to result files.
	Newline = "\n"
)
