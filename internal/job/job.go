// Package job implements one compile-and-run invocation against a single
// C or C++ source file.
//
// The lifecycle is Initialize, Run, MakeOutputFile and CleanUp, in that order.
// CleanUp must run on every exit path, so callers defer it right after New.
package job

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/winc-tools/winc/internal/driver"
	"github.com/winc-tools/winc/internal/log"
	"github.com/winc-tools/winc/internal/model"
)

const (
	TempExeName    = "temp.exe"
	InputFileName  = "input.txt"
	OutputFileName = "output.txt"

	DefaultCompilerName = "MinGW"
)

type Job struct {
	id           string
	src          string
	flags        string
	compilerName string
	runArgs      string

	configPath string
	loadConfig bool

	mode    driver.Mode
	interp  driver.Interpreter
	timeout time.Duration
	trim    *Trim

	// set by Initialize
	dir                 string
	lang                model.Language
	tempExe             string
	inputPath           string
	outputPath          string
	compileCmd          string
	runCmd              string
	inputWasSynthesized bool
	root                *os.Root
	errors              *LineBuffer
	output              *LineBuffer
}

// New returns a Job reading compiler flags from config.xml next to the
// running binary and driving a shell interpreter.
func New() *Job {
	return &Job{
		id:           uuid.NewString(),
		compilerName: DefaultCompilerName,
		loadConfig:   true,
		mode:         driver.ModeShell,
		interp:       driver.DefaultInterpreter(),
		errors:       NewLineBuffer(),
		output:       NewLineBuffer(),
	}
}

func (j *Job) ID() string { return j.id }

func (j *Job) SourceFile() string { return j.src }
func (j *Job) SetSourceFile(path string) { j.src = path }

// CompilerArguments returns the flag fragment inserted between the source
// path and -o. Initialize replaces it with the Flags of config.xml, or with
// an empty string if the configuration can't be used.
func (j *Job) CompilerArguments() string { return j.flags }
func (j *Job) SetCompilerArguments(flags string) { j.flags = flags }

// CompilerName is a label for the toolchain, reported in logs only.
func (j *Job) CompilerName() string { return j.compilerName }
func (j *Job) SetCompilerName(name string) { j.compilerName = name }

func (j *Job) RunArguments() string { return j.runArgs }
func (j *Job) SetRunArguments(args string) { j.runArgs = args }

// SetConfigPath changes where config.xml is read from. An empty path turns
// configuration loading off and keeps CompilerArguments as set.
func (j *Job) SetConfigPath(path string) {
	j.configPath = path
	j.loadConfig = path != ""
}

func (j *Job) SetMode(mode driver.Mode) { j.mode = mode }
func (j *Job) Mode() driver.Mode { return j.mode }

func (j *Job) SetInterpreter(interp driver.Interpreter) { j.interp = interp }

// SetTimeout bounds every spawned command. Zero means no limit.
func (j *Job) SetTimeout(d time.Duration) { j.timeout = d }

// SetTrim overrides the trim window of the mode.
func (j *Job) SetTrim(t Trim) { j.trim = &t }

// Trim returns the window MakeOutputFile applies.
func (j *Job) Trim() Trim {
	if j.trim != nil {
		return *j.trim
	}
	if j.mode == driver.ModeDirect {
		return Trim{}
	}
	return DefaultTrim
}

func (j *Job) Errors() []string { return j.errors.Lines() }
func (j *Job) Output() []string { return j.output.Lines() }

func (j *Job) Dir() string { return j.dir }
func (j *Job) Language() model.Language { return j.lang }
func (j *Job) TempExePath() string { return j.tempExe }
func (j *Job) InputPath() string { return j.inputPath }
func (j *Job) OutputPath() string { return j.outputPath }
func (j *Job) CompileCommand() string { return j.compileCmd }
func (j *Job) RunCommand() string { return j.runCmd }
func (j *Job) InputWasSynthesized() bool { return j.inputWasSynthesized }

func (j *Job) logCtx(ctx context.Context) context.Context {
	return log.ContextAttrs(ctx, slog.String("job", j.id))
}

// Initialize loads the configuration, makes sure input.txt exists and
// derives the compile and run commands. Filesystem errors are fatal and wrap
// model.ErrFilesystem; configuration errors are logged and leave the flags
// empty.
func (j *Job) Initialize(ctx context.Context) error {
	ctx = j.logCtx(ctx)
	if j.src == "" {
		return fmt.Errorf("%w: source file not set", model.ErrFilesystem)
	}
	src, err := filepath.Abs(j.src)
	if err != nil {
		return fmt.Errorf("%w: resolving %s: %w", model.ErrFilesystem, j.src, err)
	}
	j.src = src
	j.dir = filepath.Dir(src)
	j.lang = model.DetectLanguage(src)

	j.loadFlags(ctx)

	j.errors = NewLineBuffer()
	j.output = NewLineBuffer()

	root, err := os.OpenRoot(j.dir)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", model.ErrFilesystem, j.dir, err)
	}
	j.root = root

	j.tempExe = filepath.Join(j.dir, TempExeName)
	j.inputPath = filepath.Join(j.dir, InputFileName)
	j.outputPath = filepath.Join(j.dir, OutputFileName)

	if err := j.ensureInput(ctx); err != nil {
		return err
	}

	j.compileCmd = compileLine(j.lang.Compiler(), j.src, j.flags, j.tempExe)
	j.runCmd = runLine(j.tempExe, j.runArgs, j.inputPath)

	slog.DebugContext(ctx, "job initialized",
		"source", j.src,
		"language", j.lang.String(),
		"compiler", j.compilerName,
		"mode", j.mode.String(),
		"input_synthesized", j.inputWasSynthesized,
	)
	return nil
}

func (j *Job) ensureInput(ctx context.Context) error {
	_, err := j.root.Stat(InputFileName)
	switch {
	case err == nil:
		j.inputWasSynthesized = false
		return nil
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("%w: probing %s: %w", model.ErrFilesystem, j.inputPath, err)
	}

	f, err := j.root.OpenFile(InputFileName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", model.ErrFilesystem, j.inputPath, err)
	}
	j.inputWasSynthesized = true
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", model.ErrFilesystem, j.inputPath, err)
	}
	slog.DebugContext(ctx, "making input file", "path", j.inputPath)
	return nil
}

func (j *Job) loadFlags(ctx context.Context) {
	if !j.loadConfig {
		slog.DebugContext(ctx, "configuration disabled, using compiler args as set", "flags", j.flags)
		return
	}

	path := j.configPath
	if path == "" {
		var err error
		path, err = model.DefaultConfigPath()
		if err != nil {
			j.configFailed(ctx, &model.ConfigError{Kind: model.ConfigUnknown, Err: err})
			return
		}
	}

	cfg, err := model.LoadConfigFile(path)
	if err != nil {
		j.configFailed(ctx, err)
		return
	}
	j.flags = cfg.Flags
	slog.InfoContext(ctx, "compiler args", "flags", j.flags, "path", path)
}

func (j *Job) configFailed(ctx context.Context, err error) {
	kind := model.ConfigErrKind(err)
	var msg string
	switch kind {
	case model.ConfigMissing:
		msg = "configuration file not found, setting flags to nil"
	case model.ConfigMalformed, model.ConfigAmbiguous:
		msg = "bad configuration file"
	default:
		msg = "configuration exception"
	}
	slog.ErrorContext(ctx, msg, log.Event(kind.String()), "error", err)
	j.flags = ""
}
