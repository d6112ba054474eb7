package pipeline

import "fmt"

// ValidationError reports bad or missing request data. Never retried,
// surfaced to the caller as a client error.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidationError creates a validation error
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced template, script, or asset that does
// not exist. Never retried, surfaced as a client error.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// CompositionError reports a failed external rendering process. The
// diagnostic carries the command and the tail of its stderr for server-side
// logging; it is never returned verbatim to the end user.
type CompositionError struct {
	Stage      string
	Diagnostic string
	Err        error
}

func (e *CompositionError) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("%s stage failed: %s", e.Stage, e.Diagnostic)
	}
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *CompositionError) Unwrap() error {
	return e.Err
}

// NewCompositionError creates a composition error for a stage
func NewCompositionError(stage string, err error) *CompositionError {
	ce := &CompositionError{Stage: stage, Err: err}
	if err != nil {
		ce.Diagnostic = err.Error()
	}
	return ce
}

// IOError reports a local filesystem failure reading or writing an
// intermediate. Not retried, surfaced as a server error.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates an I/O error
func NewIOError(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Err: err}
}
