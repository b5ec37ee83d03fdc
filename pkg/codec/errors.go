package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDocument wraps every structural problem found while decoding.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrUnknownFormat is returned for unsupported formats or file extensions.
	ErrUnknownFormat = errors.New("unknown document format")
)

// FieldError represents a single problem at a path inside a document.
type FieldError struct {
	Path   string // Dotted path, e.g. steps.step1.position
	Reason string // Human-readable reason for failure
	Value  any    // The offending value, if any
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %T)", e.Path, e.Reason, e.Value)
}

// AggregateError lists every problem found in one document.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d document errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Is makes errors.Is(err, ErrInvalidDocument) hold for aggregate errors.
func (e *AggregateError) Is(target error) bool {
	return target == ErrInvalidDocument
}

// Unwrap exposes the individual problems to errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// FieldErrors returns all field errors if err carries an AggregateError.
// Otherwise returns nil.
func FieldErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

type collector struct {
	errs []error
}

func (c *collector) add(path, reason string, value any) {
	c.errs = append(c.errs, &FieldError{Path: path, Reason: reason, Value: value})
}

func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: c.errs}
}
