// Package records implements the student workflows: registration,
// sign-in, password resets, profile reads and updates, and the Aadhar
// document upload.
//
// Each workflow is a Service method. Every error it returns is a *Error
// whose Kind tells the HTTP layer which status to answer with:
//
//	ErrValidation         → 400   ErrNotFound      → 404
//	ErrInvalidCredentials → 400   ErrSamePassword  → 400
//	ErrInvalidFile        → 400   ErrDuplicate     → 409 (profile update)
//	ErrStorage            → 500   ErrInternal      → 500
//
// A duplicate signup is NOT an error: Register reports it through
// RegisterResult.Exists so the client can show a friendly message.
package records

import (
	"errors"
	"io"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/validation"
)

// PasswordHasher hashes and verifies passwords. *auth.Hasher satisfies it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(hash, password string) bool
}

// DocumentStore persists uploaded files. *documents.LocalStorage
// satisfies it.
type DocumentStore interface {
	Save(name string, r io.Reader) error
	Remove(name string) error
}

// Service runs the workflows against one record store.
type Service struct {
	store     storage.Storage
	validator *validation.Validator
	hasher    PasswordHasher
	docs      DocumentStore
}

// NewService wires the workflows to their collaborators.
func NewService(store storage.Storage, hasher PasswordHasher, docs DocumentStore) *Service {
	return &Service{
		store:     store,
		validator: validation.New(),
		hasher:    hasher,
		docs:      docs,
	}
}

// Success messages the handlers send back verbatim.
const (
	MsgRegistered       = "User registered successfully"
	MsgPasswordUpdated  = "Password updated successfully"
	MsgDocumentUploaded = "Aadhar document uploaded successfully!"
)

const (
	msgEmailExists      = "User with this email already exists"
	msgRegisterNoExists = "User with this register number already exists"
	msgUserNotFound     = "User not found"
	msgInvalidPassword  = "Invalid password"
	msgSamePassword     = "New password cannot be same as the old password"
	msgPasswordTooLong  = "Password must be at most 72 bytes"
	msgStorageFailure   = "Failed to access student records"
	msgUnexpected       = "An unexpected error occurred"
	msgEmptyFile        = "Please select a file to upload."
	msgInvalidFileType  = "Invalid file type. Only JPG, PNG, or PDF are allowed."
	msgUploadNoUser     = "User not found for the given register number."
	msgUploadIOFailure  = "Failed to upload file due to server error"
)

// lookupError turns a store lookup failure into a workflow error.
func lookupError(op string, err error, notFoundMsg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return wrapError(op, ErrNotFound, notFoundMsg, err)
	}
	return wrapError(op, ErrStorage, msgStorageFailure, err)
}
