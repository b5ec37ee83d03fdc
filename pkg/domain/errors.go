package domain

import "errors"

// ErrStepNotFound is returned by shells that check a step exists before
// forwarding an edit. The edit operations themselves never return it.
var ErrStepNotFound = errors.New("step not found")

// ErrUnknownInputType is returned when a tagged step input has an unknown type.
var ErrUnknownInputType = errors.New("unknown step input type")
