package job

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/winc-tools/winc/internal/driver"
	"github.com/winc-tools/winc/internal/model"
)

// Trim is the window of captured lines kept in output.txt. Head and Tail are
// dropped from the start and end of the output buffer, ErrorTail from the end
// of the errors buffer.
type Trim struct {
	Head      int
	Tail      int
	ErrorTail int
}

// DefaultTrim strips what cmd.exe adds around two piped commands: a banner
// and prompt echoes before the program output, prompts and the exit echo
// after it, and the two trailing stderr lines.
var DefaultTrim = Trim{Head: 6, Tail: 3, ErrorTail: 2}

// Select picks the lines to persist. Non-empty errors always win over output.
func (t Trim) Select(errs, output []string) (lines []string, fromErrors bool) {
	if len(errs) != 0 {
		end := max(len(errs)-t.ErrorTail, 0)
		return errs[:end], true
	}
	start, end := max(t.Head, 0), len(output)-t.Tail
	if start >= end {
		return nil, false
	}
	return output[start:end], false
}

// MakeOutputFile creates or truncates output.txt and writes the selected
// lines, each followed by the platform line terminator.
func (j *Job) MakeOutputFile(ctx context.Context) error {
	ctx = j.logCtx(ctx)
	if j.root == nil {
		return errors.New("job not initialized")
	}

	errs, output := j.errors.Lines(), j.output.Lines()
	lines, fromErrors := j.Trim().Select(errs, output)
	if fromErrors {
		slog.InfoContext(ctx, "writing errors", "count", len(errs))
	} else {
		slog.InfoContext(ctx, "writing output", "count", len(lines))
	}

	f, err := j.root.OpenFile(OutputFileName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", model.ErrFilesystem, j.outputPath, err)
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		_, _ = w.WriteString(toASCII(line))
		_, _ = w.WriteString(driver.Newline)
	}
	err = w.Flush()
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%w: writing %s: %w", model.ErrFilesystem, j.outputPath, err)
	}
	return nil
}

// toASCII replaces every non-ASCII rune, and every invalid byte, with '?'.
func toASCII(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r > 0x7f {
			r = '?'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
