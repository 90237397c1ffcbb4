package job_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/winc-tools/winc/internal/driver"
	"github.com/winc-tools/winc/internal/job"

	"github.com/stretchr/testify/require"
)

// program copies a fixture from testing/programs into a fresh job directory.
func program(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "..", "testing", "programs", name))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	writeFile(t, path, string(b))
	return path
}

func compile(t *testing.T, src string, mode driver.Mode, runArgs string) *job.Job {
	t.Helper()
	lookPath(t, "sh")
	if filepath.Ext(src) == ".c" {
		lookPath(t, "gcc")
	} else {
		lookPath(t, "g++")
	}

	j := job.New()
	t.Cleanup(func() { j.CleanUp(context.Background()) })
	j.SetSourceFile(src)
	j.SetConfigPath("")
	j.SetMode(mode)
	j.SetRunArguments(runArgs)
	j.SetTimeout(time.Minute)
	require.NoError(t, j.Initialize(t.Context()))
	require.NoError(t, j.Run(t.Context()))
	require.NoError(t, j.MakeOutputFile(t.Context()))
	return j
}

func TestToolchain_HelloWorld(t *testing.T) {
	t.Parallel()
	j := compile(t, program(t, "hello.cpp"), driver.ModeShell, "")
	require.Empty(t, j.Errors())
	require.Contains(t, j.Output(), "Hello")
	require.Nil(t, readLines(t, j.OutputPath()))

	j.CleanUp(t.Context())
	require.False(t, exists(j.TempExePath()))
	require.False(t, exists(j.InputPath()))
	require.True(t, exists(j.OutputPath()))
}

func TestToolchain_CompileFailure(t *testing.T) {
	t.Parallel()
	j := compile(t, program(t, "bad.c"), driver.ModeShell, "")
	errs := j.Errors()
	require.NotEmpty(t, errs)
	// diagnostics may carry non-ASCII quotes, so compare by count
	require.Len(t, readLines(t, j.OutputPath()), max(len(errs)-2, 0))

	j.CleanUp(t.Context())
	require.False(t, exists(j.TempExePath()))
}

func TestToolchain_Echo(t *testing.T) {
	t.Parallel()
	src := program(t, "cat.cpp")
	input := filepath.Join(filepath.Dir(src), job.InputFileName)
	writeFile(t, input, "foo\nbar\n")

	j := compile(t, src, driver.ModeShell, "")
	require.Empty(t, j.Errors())
	require.Subset(t, j.Output(), []string{"foo", "bar"})

	j.CleanUp(t.Context())
	require.True(t, exists(input))
}

func TestToolchain_Window(t *testing.T) {
	t.Parallel()
	j := compile(t, program(t, "lines.cpp"), driver.ModeShell, "12")
	require.Equal(t, []string{"line 6", "line 7", "line 8"}, readLines(t, j.OutputPath()))
}

func TestToolchain_Repeatable(t *testing.T) {
	t.Parallel()
	for _, mode := range []driver.Mode{driver.ModeShell, driver.ModeDirect} {
		t.Run(mode.String(), func(t *testing.T) {
			src := program(t, "lines.cpp")
			first := compile(t, src, mode, "12")
			b1, err := os.ReadFile(first.OutputPath())
			require.NoError(t, err)
			first.CleanUp(t.Context())

			second := compile(t, src, mode, "12")
			b2, err := os.ReadFile(second.OutputPath())
			require.NoError(t, err)
			require.NotEmpty(t, b2)
			require.Equal(t, b1, b2)
		})
	}
}

func TestToolchain_Direct(t *testing.T) {
	t.Parallel()

	t.Run("full output", func(t *testing.T) {
		j := compile(t, program(t, "lines.cpp"), driver.ModeDirect, "3")
		require.Equal(t, []string{"line 0", "line 1", "line 2"}, readLines(t, j.OutputPath()))
	})

	t.Run("stdin", func(t *testing.T) {
		src := program(t, "cat.cpp")
		writeFile(t, filepath.Join(filepath.Dir(src), job.InputFileName), "foo\nbar\n")
		j := compile(t, src, driver.ModeDirect, "")
		require.Equal(t, []string{"foo", "bar"}, readLines(t, j.OutputPath()))
	})

	t.Run("compile failure", func(t *testing.T) {
		j := compile(t, program(t, "bad.c"), driver.ModeDirect, "")
		require.NotEmpty(t, j.Errors())
		require.Empty(t, j.Output())
		require.Len(t, readLines(t, j.OutputPath()), len(j.Errors()))
		require.False(t, exists(j.TempExePath()))
	})
}
