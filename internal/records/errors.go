package records

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Service wraps exactly one of them;
// check with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicate          = errors.New("student already exists")
	ErrNotFound           = errors.New("student not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSamePassword       = errors.New("new password equals current password")
	ErrInvalidFile        = errors.New("invalid file")
	ErrStorage            = errors.New("storage failure")
	ErrInternal           = errors.New("internal error")
)

// Error carries the failing operation, its kind and the message a
// client should see.
type Error struct {
	Op      string // e.g. "Register", "UploadDocument"
	Kind    error  // one of the Err* kinds above
	Message string // client-facing message
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("records.%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("records.%s: %s", e.Op, e.Message)
}

// Is matches the kind first, then the cause.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, kind error, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message}
}

func wrapError(op string, kind error, message string, err error) *Error {
	return &Error{Op: op, Kind: kind, Message: message, Err: err}
}

// Message returns the client-facing message of err: the Message of a
// *Error, or a generic text for anything else.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "An unexpected error occurred"
}
