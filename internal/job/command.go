package job

import (
	"fmt"
	"strings"

	"github.com/drone/envsubst"
	"github.com/google/shlex"
)

// compileLine is "<compiler> <src> <flags> -o <tempExe>". Nothing is quoted,
// so paths containing spaces are not supported.
func compileLine(compiler, src, flags, tempExe string) string {
	return strings.Join([]string{compiler, src, flags, "-o", tempExe}, " ")
}

// runLine is "<tempExe> <runArgs> < <input>".
func runLine(tempExe, runArgs, input string) string {
	return strings.Join([]string{tempExe, runArgs, "<", input}, " ")
}

func compileArgv(compiler, src, flags, tempExe string) ([]string, error) {
	fields, err := splitFragment(flags)
	if err != nil {
		return nil, fmt.Errorf("compiler flags: %w", err)
	}
	argv := make([]string, 0, len(fields)+4)
	argv = append(argv, compiler, src)
	argv = append(argv, fields...)
	argv = append(argv, "-o", tempExe)
	return argv, nil
}

func runArgv(tempExe, runArgs string) ([]string, error) {
	fields, err := splitFragment(runArgs)
	if err != nil {
		return nil, fmt.Errorf("run arguments: %w", err)
	}
	return append([]string{tempExe}, fields...), nil
}

// splitFragment does what the interpreter would do to a fragment in shell
// mode: expand environment variables, then split on unquoted whitespace.
func splitFragment(fragment string) ([]string, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, nil
	}
	expanded, err := envsubst.EvalEnv(fragment)
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", fragment, err)
	}
	fields, err := shlex.Split(expanded)
	if err != nil {
		return nil, fmt.Errorf("splitting %q: %w", expanded, err)
	}
	return fields, nil
}
