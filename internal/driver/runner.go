package driver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/winc-tools/winc/internal/model"
	"golang.org/x/sync/errgroup"
)

// waitDelay bounds how long Wait keeps reading the pipes after the child was
// killed. Grandchildren inheriting stdout would otherwise block it forever.
const waitDelay = 2 * time.Second

// LineFunc receives one line of child output without its terminator.
type LineFunc func(ctx context.Context, line string)

type Command struct {
	Path    string
	Args    []string
	Env     []string
	Dir     string
	Stdin   io.Reader
	Timeout time.Duration
}

type Result struct {
	Path    string
	Args    []string
	Started time.Time
	Stopped time.Time
	State   *os.ProcessState
	Err     error
}

// ExitCode returns the exit code of the process or -1 if it did not exit
// normally or was never started.
func (r Result) ExitCode() int {
	if r.State == nil {
		return -1
	}
	return r.State.ExitCode()
}

// TimedOut reports whether the command was killed by its Timeout.
func (r Result) TimedOut() bool {
	return errors.Is(r.Err, context.DeadlineExceeded)
}

// Run starts the command and blocks until it exits and both output streams
// are drained. Every stdout line goes to stdoutFunc and every stderr line to
// stderrFunc, each from its own goroutine, so lines of one stream arrive in
// order while the two streams interleave freely. A nil func discards the stream.
//
// The returned error is non-nil only when the process could not be started,
// wrapping model.ErrSpawn. Exit status and timeouts are reported through Result.
func Run(ctx context.Context, proto Command, stdoutFunc, stderrFunc LineFunc) (Result, error) {
	result := Result{
		Path: proto.Path,
		Args: append([]string(nil), proto.Args...),
	}

	if proto.Timeout == 0 {
		slog.WarnContext(ctx, "command has no timeout", "path", proto.Path)
	} else {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, proto.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, proto.Path, proto.Args...)
	cmd.Env = proto.Env
	cmd.Dir = proto.Dir
	cmd.Stdin = proto.Stdin
	cmd.WaitDelay = waitDelay

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	result.Started = time.Now().UTC()
	if err := cmd.Start(); err != nil {
		result.Stopped = time.Now().UTC()
		result.Err = fmt.Errorf("%w: %w", model.ErrSpawn, err)
		_ = stdoutW.Close()
		_ = stderrW.Close()
		return result, result.Err
	}
	slog.DebugContext(ctx, "command started", "path", proto.Path, "args", proto.Args, "pid", cmd.Process.Pid)

	var g errgroup.Group
	g.Go(func() error {
		return processLines(ctx, stdoutR, stdoutFunc)
	})
	g.Go(func() error {
		return processLines(ctx, stderrR, stderrFunc)
	})

	err := cmd.Wait()
	// Wait has finished copying into the pipe writers; closing them lets
	// the readers observe EOF.
	_ = stdoutW.Close()
	_ = stderrW.Close()
	if readErr := g.Wait(); readErr != nil {
		slog.ErrorContext(ctx, "processing output", "path", proto.Path, "error", readErr)
	}

	result.Stopped = time.Now().UTC()
	result.State = cmd.ProcessState
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = errors.Join(err, ctxErr)
	}
	result.Err = err
	return result, nil
}

// processLines reads r until EOF, handing over every line. A final line
// without terminator is delivered too.
func processLines(ctx context.Context, r io.Reader, lineFunc LineFunc) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 && lineFunc != nil {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			lineFunc(ctx, line)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			_, _ = io.Copy(io.Discard, r)
			return err
		}
	}
}
