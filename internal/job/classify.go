package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/winc-tools/winc/internal/driver"
)

// classifyStderr keeps non-empty stderr lines as errors.
func (j *Job) classifyStderr(_ context.Context, line string) {
	if line == "" {
		return
	}
	j.errors.Append(line)
}

// classifyStdout keeps every stdout line, interpreter noise included.
func (j *Job) classifyStdout(_ context.Context, line string) {
	j.output.Append(line)
}

func (j *Job) plan() (driver.Plan, error) {
	plan := driver.Plan{
		Dir:     j.dir,
		Compile: driver.Step{Line: j.compileCmd},
		Run:     driver.Step{Line: j.runCmd, StdinPath: j.inputPath},
		Timeout: j.timeout,
	}
	if j.mode != driver.ModeDirect {
		return plan, nil
	}

	var err error
	plan.Compile.Argv, err = compileArgv(j.lang.Compiler(), j.src, j.flags, j.tempExe)
	if err != nil {
		return driver.Plan{}, err
	}
	plan.Run.Argv, err = runArgv(j.tempExe, j.runArgs)
	if err != nil {
		return driver.Plan{}, err
	}
	return plan, nil
}

// Run compiles and runs the program, filling Errors and Output. Both buffers
// are frozen when Run returns. A command killed by the timeout is not an
// error: whatever was captured until then is kept.
func (j *Job) Run(ctx context.Context) error {
	ctx = j.logCtx(ctx)
	if j.root == nil {
		return errors.New("job not initialized")
	}
	defer func() {
		j.errors.Freeze()
		j.output.Freeze()
	}()

	plan, err := j.plan()
	if err != nil {
		return fmt.Errorf("building commands: %w", err)
	}

	d := driver.New(j.mode, j.interp)
	err = d.Drive(ctx, plan, driver.Handlers{
		Stdout: j.classifyStdout,
		Stderr: j.classifyStderr,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			slog.WarnContext(ctx, "run timed out", "timeout", j.timeout.String(), "error", err)
			return nil
		}
		return err
	}

	slog.DebugContext(ctx, "run finished", "errors", j.errors.Len(), "output", j.output.Len())
	return nil
}
