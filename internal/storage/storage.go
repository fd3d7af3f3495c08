// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to hold student records.
//
// Handlers and workflows only ever see this interface. The concrete
// backends live in sub-packages (sqlite, postgres) and share their SQL
// through sqlstore.
package storage

import (
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/types"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("student not found")

// ErrDuplicate is returned when a write would break a uniqueness
// constraint. The concrete error is a *DuplicateError naming the field.
var ErrDuplicate = errors.New("student already exists")

// Unique fields reported by DuplicateError.
const (
	FieldRegisterNumber = "registerNumber"
	FieldEmail          = "email"
)

// DuplicateError tells the caller WHICH unique field collided.
type DuplicateError struct {
	Field string // FieldRegisterNumber or FieldEmail
	Err   error  // driver error, if the conflict came from the database
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("student with this %s already exists", e.Field)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// Storage is the record store contract.
type Storage interface {
	// CreateStudent inserts a new record. The insert itself is checked by
	// the table's primary key and unique email index, so a concurrent
	// duplicate surfaces here as a *DuplicateError.
	CreateStudent(student types.Student) error

	// GetStudentByRegisterNumber fetches one record by primary key.
	// Returns ErrNotFound if there is none.
	GetStudentByRegisterNumber(registerNumber string) (types.Student, error)

	// GetStudentByEmail fetches one record by its unique email.
	// Returns ErrNotFound if there is none.
	GetStudentByEmail(email string) (types.Student, error)

	// UpdateStudent replaces every column of the record with the same
	// register number and returns what is stored afterwards.
	UpdateStudent(student types.Student) (types.Student, error)

	// UpdatePassword overwrites the stored password hash.
	UpdatePassword(registerNumber, passwordHash string) error

	// SetDocumentPath records the filename of an uploaded document.
	SetDocumentPath(registerNumber, path string) error

	Close() error
}
