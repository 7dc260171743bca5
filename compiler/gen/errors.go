// Package gen renders FileMaker layout schemas as Go source: a type module
// per layout (structs, literal unions and runtime validators) and,
// optionally, a typed Data API client package per layout.
package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("fmgen: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("fmgen: code generation failed")
	// ErrEmission indicates a schema branch that could not be emitted.
	ErrEmission = errors.New("fmgen: emission skipped")
)

// ConfigError represents a configuration error. Missing lists every
// environment variable that must be set for the run to proceed.
type ConfigError struct {
	Option  string
	Value   any
	Message string
	Missing []string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("fmgen: missing required environment variables: %s", strings.Join(e.Missing, ", "))
	case e.Value != nil:
		return fmt.Sprintf("fmgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("fmgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// NewMissingEnvError creates a ConfigError listing missing variables.
func NewMissingEnvError(missing ...string) *ConfigError {
	return &ConfigError{Option: "EnvNames", Message: "missing environment variables", Missing: missing}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Phase   string // "plan", "render", "format", "write", ...
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("fmgen: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// EmissionError is a warning about a schema branch that was emitted in a
// degraded form or left out. Generation continues.
type EmissionError struct {
	Schema  string
	Field   string
	Message string
}

// Error implements the error interface.
func (e *EmissionError) Error() string {
	var b strings.Builder
	b.WriteString("fmgen: emission warning")
	if e.Schema != "" {
		b.WriteString(" on schema ")
		b.WriteString(e.Schema)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for EmissionError.
func (e *EmissionError) Is(target error) bool {
	return target == ErrEmission
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsEmissionError reports whether the error is an EmissionError.
func IsEmissionError(err error) bool {
	var emErr *EmissionError
	return errors.As(err, &emErr)
}
