//go:build windows

package driver

const (
	defaultShell = "cmd.exe"
	// Newline terminates lines written to the interpreter and to result files.
	Newline = "\r\n"
)
