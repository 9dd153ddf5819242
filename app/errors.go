package app

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes pipeline failures for callers and operators.
type ErrorKind string

const (
	// ErrInvalidInput means the audio or image source is missing, unreadable
	// or empty, or the request itself is malformed.
	ErrInvalidInput ErrorKind = "invalid_input"
	// ErrUnknownPreset means the requested effect preset is not registered.
	ErrUnknownPreset ErrorKind = "unknown_preset"
	// ErrInsufficientSourceResolution means the scaled source cannot cover
	// the target canvas at the motion profile's minimum zoom.
	ErrInsufficientSourceResolution ErrorKind = "insufficient_source_resolution"
	// ErrEngineInvocationFailed means ffmpeg exited non-zero or timed out.
	ErrEngineInvocationFailed ErrorKind = "engine_invocation_failed"
	// ErrOutputValidationFailed means the engine reported success but the
	// produced file's resolution or duration does not match the target.
	ErrOutputValidationFailed ErrorKind = "output_validation_failed"
	// ErrRenderFailed is terminal: all encoder strategies were exhausted.
	ErrRenderFailed ErrorKind = "render_failed"
)

// PipelineError is a categorized failure with the engine's raw diagnostic
// text attached for operator inspection.
type PipelineError struct {
	Kind       ErrorKind
	Message    string
	Diagnostic string
	Err        error
}

func (e *PipelineError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches two pipeline errors by kind, so callers can test
// errors.Is(err, &PipelineError{Kind: ErrUnknownPreset}).
func (e *PipelineError) Is(target error) bool {
	if t, ok := target.(*PipelineError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// NewError creates a categorized pipeline error.
func NewError(kind ErrorKind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message}
}

// Errorf creates a categorized pipeline error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps an underlying error with a kind and message.
func WrapError(err error, kind ErrorKind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: err}
}

// WithDiagnostic attaches raw engine output to the error.
func (e *PipelineError) WithDiagnostic(diag string) *PipelineError {
	e.Diagnostic = diag
	return e
}

// KindOf extracts the error kind, defaulting to ErrRenderFailed for
// uncategorized failures.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrRenderFailed
}

// DiagnosticOf extracts any attached engine diagnostic text.
func DiagnosticOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Diagnostic
	}
	return ""
}
