package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Mode selects how the compile and run steps are spawned.
type Mode int

const (
	// ModeShell feeds both steps to one interpreter through its stdin.
	ModeShell Mode = iota
	// ModeDirect spawns the compiler and the program as separate children.
	ModeDirect
)

func (m Mode) String() string {
	switch m {
	case ModeShell:
		return "shell"
	case ModeDirect:
		return "direct"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "shell":
		return ModeShell, nil
	case "direct":
		return ModeDirect, nil
	default:
		return 0, fmt.Errorf("unknown mode %q, expected shell or direct", s)
	}
}

// Step is one command in both of its forms: Line for an interpreter and
// Argv for direct spawning.
type Step struct {
	Line      string
	Argv      []string
	StdinPath string
}

// Plan is everything a Driver needs to compile and run a program.
type Plan struct {
	Dir     string
	Compile Step
	Run     Step
	Timeout time.Duration
}

// Handlers receive the lines of the children's output streams.
type Handlers struct {
	Stdout LineFunc
	Stderr LineFunc
}

type Driver interface {
	Drive(ctx context.Context, plan Plan, h Handlers) error
}

// Interpreter is a command interpreter reading commands from stdin.
type Interpreter struct {
	Path string
	Args []string
	Exit string
}

// DefaultInterpreter returns cmd.exe on Windows and sh elsewhere.
func DefaultInterpreter() Interpreter {
	return Interpreter{
		Path: defaultShell,
		Exit: "exit",
	}
}

// New returns the Driver for mode. interp is used by ModeShell only.
func New(mode Mode, interp Interpreter) Driver {
	if mode == ModeDirect {
		return &Direct{}
	}
	if interp.Path == "" {
		interp.Path = defaultShell
	}
	if interp.Exit == "" {
		interp.Exit = "exit"
	}
	return &Shell{Interpreter: interp}
}

type Shell struct {
	Interpreter Interpreter
}

// Script returns the exact stdin content written to the interpreter: the
// compile line, the run line and the exit directive.
func (s *Shell) Script(plan Plan) string {
	var sb strings.Builder
	for _, line := range []string{plan.Compile.Line, plan.Run.Line, s.Interpreter.Exit} {
		sb.WriteString(line)
		sb.WriteString(Newline)
	}
	return sb.String()
}

func (s *Shell) Drive(ctx context.Context, plan Plan, h Handlers) error {
	cmd := Command{
		Path:    s.Interpreter.Path,
		Args:    s.Interpreter.Args,
		Dir:     plan.Dir,
		Stdin:   strings.NewReader(s.Script(plan)),
		Timeout: plan.Timeout,
	}
	slog.DebugContext(ctx, "compiling with", "command", plan.Compile.Line)
	slog.DebugContext(ctx, "run with", "command", plan.Run.Line)

	res, err := Run(ctx, cmd, h.Stdout, h.Stderr)
	if err != nil {
		return err
	}
	return exitReason(ctx, res)
}

type Direct struct{}

func (d *Direct) Drive(ctx context.Context, plan Plan, h Handlers) error {
	if len(plan.Compile.Argv) == 0 || len(plan.Run.Argv) == 0 {
		return fmt.Errorf("direct mode needs argv for both steps")
	}

	compile := Command{
		Path:    plan.Compile.Argv[0],
		Args:    plan.Compile.Argv[1:],
		Dir:     plan.Dir,
		Timeout: plan.Timeout,
	}
	slog.DebugContext(ctx, "compiling with", "argv", plan.Compile.Argv)
	res, err := Run(ctx, compile, h.Stdout, h.Stderr)
	if err != nil {
		return err
	}
	if err := exitReason(ctx, res); err != nil {
		return err
	}
	if res.ExitCode() != 0 {
		slog.InfoContext(ctx, "compilation failed: skipping run", "exit_code", res.ExitCode())
		return nil
	}

	stdin, err := os.Open(plan.Run.StdinPath)
	if err != nil {
		return fmt.Errorf("opening program input: %w", err)
	}
	defer func() {
		_ = stdin.Close()
	}()

	run := Command{
		Path:    plan.Run.Argv[0],
		Args:    plan.Run.Argv[1:],
		Dir:     plan.Dir,
		Stdin:   stdin,
		Timeout: plan.Timeout,
	}
	slog.DebugContext(ctx, "run with", "argv", plan.Run.Argv)
	res, err = Run(ctx, run, h.Stdout, h.Stderr)
	if err != nil {
		return err
	}
	return exitReason(ctx, res)
}

// exitReason turns a finished child into an error only when it was killed
// by a deadline or cancellation. Exit codes are logged but not interpreted.
func exitReason(ctx context.Context, res Result) error {
	if res.TimedOut() {
		return fmt.Errorf("%s: %w", res.Path, context.DeadlineExceeded)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", res.Path, ctx.Err())
	}
	slog.DebugContext(ctx, "command finished",
		"path", res.Path,
		"exit_code", res.ExitCode(),
		"duration", res.Stopped.Sub(res.Started).String(),
	)
	return nil
}
