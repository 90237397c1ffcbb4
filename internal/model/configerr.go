package model

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
)

// ConfigErrorKind classifies why config.xml could not provide compiler flags.
type ConfigErrorKind int

const (
	ConfigUnknown ConfigErrorKind = iota
	ConfigMissing
	ConfigMalformed
	ConfigAmbiguous
)

func (k ConfigErrorKind) String() string {
	switch k {
	case ConfigMissing:
		return "ConfigMissing"
	case ConfigMalformed:
		return "ConfigMalformed"
	case ConfigAmbiguous:
		return "ConfigAmbiguous"
	default:
		return "ConfigUnknown"
	}
}

func (k ConfigErrorKind) sentinel() error {
	switch k {
	case ConfigMissing:
		return ErrConfigMissing
	case ConfigMalformed:
		return ErrConfigMalformed
	case ConfigAmbiguous:
		return ErrConfigAmbiguous
	default:
		return ErrConfigUnknown
	}
}

// ConfigError is returned by LoadConfig and LoadConfigFile. Every kind is
// recoverable: callers fall back to empty flags.
type ConfigError struct {
	Kind ConfigErrorKind
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Kind.sentinel())
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind.sentinel(), e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error kind, so errors.Is(err, ErrConfigMissing) works.
func (e *ConfigError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Attr returns a log attribute describing the error.
func (e *ConfigError) Attr(name string) slog.Attr {
	attrs := []slog.Attr{
		slog.String("kind", e.Kind.String()),
		slog.String("path", e.Path),
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()))
	}
	return slog.GroupAttrs(name, attrs...)
}

// ConfigErrKind returns the kind of a configuration error. Errors not produced
// by this package are reported as ConfigUnknown.
func ConfigErrKind(err error) ConfigErrorKind {
	var cerr *ConfigError
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return ConfigUnknown
}

func classifyOpen(path string, err error) *ConfigError {
	kind := ConfigUnknown
	if errors.Is(err, fs.ErrNotExist) {
		kind = ConfigMissing
	}
	return &ConfigError{Kind: kind, Path: path, Err: err}
}
