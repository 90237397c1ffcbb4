// Package driver spawns the toolchain and the compiled program and streams
// their output line by line.
//
// Overview
// A Driver executes a Plan: a compile Step and a run Step. Two drivers exist.
//
// Shell feeds three lines to a host interpreter (cmd.exe or sh) through its
// stdin: the compile line, the run line and "exit". The interpreter performs
// the input redirection. Whatever the interpreter prints (banner, prompts,
// command echo) reaches the handlers too; trimming it is up to the caller.
//
// Direct spawns the compiler from its argv, and, if it exited with 0, the
// produced program with stdin opened from the run Step's StdinPath.
//
// Run is a thin, opinionated wrapper around os/exec:
//   - starts the process
//   - feeds stdin from an io.Reader
//   - reads stdout and stderr in two goroutines, line by line
//   - waits for the process and for both readers
//   - kills the process after an optional timeout
//
// Data flow:
//
//	Job                  Driver                 Run(cmd)
//	 |                      |                       |
//	 | Drive(plan) -------->| Run(compile/shell) -->| exec.Start
//	 |                      |                       | stdout reader ---> Handlers.Stdout
//	 |                      |                       | stderr reader ---> Handlers.Stderr
//	 |                      |<------ Result --------| exec.Wait, readers drained
//	 |<------ error --------|                       |
//
// Invariants:
//   - Lines of one stream reach its handler in the order the child wrote them.
//   - Nothing is guaranteed about ordering between the two streams.
//   - Drive returns only after both readers observed end of stream.
//   - Exit codes never fail a Drive; only spawn errors, deadlines and
//     cancellation do.
package driver
