package carteira

import (
	"errors"
	"fmt"
)

// Sentinel errors for document generation failure conditions.
var (
	ErrNoSheets     = errors.New("carteira: no sheets or pages to assemble")
	ErrNoMembers    = errors.New("carteira: no member records supplied")
	ErrInvalidMode  = errors.New("carteira: invalid output mode")
	ErrUnsafeSource = errors.New("carteira: image source is not an accepted reference")
	ErrFetch        = errors.New("carteira: remote asset could not be fetched")
)

// Error represents a failure during a specific generation step.
// It wraps an underlying error and includes the operation name for context.
type Error struct {
	Op  string // operation name, e.g. "ResolvePhoto", "RenderPDF"
	Err error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("carteira.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("carteira.%s: unknown error", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error wrapping err with operation context.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}
