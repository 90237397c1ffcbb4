package job

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/winc-tools/winc/internal/log"
)

// CleanUp removes temp.exe and, if Initialize created it, input.txt. It is
// safe to call at any point of the lifecycle and more than once. Failures are
// logged and otherwise ignored.
func (j *Job) CleanUp(ctx context.Context) {
	ctx = j.logCtx(ctx)

	var errs []error
	if j.tempExe != "" {
		if err := j.remove(TempExeName, j.tempExe); err != nil {
			errs = append(errs, err)
		}
	}

	if j.inputWasSynthesized {
		if err := j.remove(InputFileName, j.inputPath); err != nil {
			errs = append(errs, err)
		} else {
			j.inputWasSynthesized = false
		}
	}

	if j.root != nil {
		if err := j.root.Close(); err != nil {
			errs = append(errs, err)
		}
		j.root = nil
	}

	if err := errors.Join(errs...); err != nil {
		slog.ErrorContext(ctx, "cleanup failed", log.Event("CleanupError"), "error", err)
	}
}

// remove deletes name inside the job directory. A file which is already
// gone is not an error.
func (j *Job) remove(name, path string) error {
	var err error
	if j.root != nil {
		err = j.root.Remove(name)
	} else {
		err = os.Remove(path)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
