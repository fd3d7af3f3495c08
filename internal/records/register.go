package records

import (
	"errors"

	"github.com/aanand-mishra/student-records/internal/auth"
	"github.com/aanand-mishra/student-records/internal/metrics"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/validation"
)

// RegisterResult is the outcome of a signup that passed validation.
type RegisterResult struct {
	// Exists is true when the email or register number is already taken.
	// Nothing was written in that case.
	Exists bool

	// Field names the unique field that collided (storage.FieldEmail or
	// storage.FieldRegisterNumber); empty when Exists is false.
	Field string

	Message string
}

// Register validates a signup and inserts the new record.
//
// Order of checks:
//  1. validation rules (first failure → ErrValidation)
//  2. email already registered?           → Exists, Field=email
//  3. register number already registered? → Exists, Field=registerNumber
//  4. normalize ids, hash the password, insert
//
// Steps 2 and 3 only give the friendly answer early. The insert itself
// is constraint-checked, so a signup that races past them still ends up
// as Exists rather than as a second row.
func (s *Service) Register(student types.Student) (RegisterResult, error) {
	const op = "Register"

	if err := s.validator.ValidateRegistration(student); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return RegisterResult{}, wrapError(op, ErrValidation, err.Error(), err)
	}

	_, err := s.store.GetStudentByEmail(student.Email)
	switch {
	case err == nil:
		return duplicateResult(storage.FieldEmail), nil
	case !errors.Is(err, storage.ErrNotFound):
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return RegisterResult{}, wrapError(op, ErrStorage, msgStorageFailure, err)
	}

	_, err = s.store.GetStudentByRegisterNumber(student.RegisterNumber)
	switch {
	case err == nil:
		return duplicateResult(storage.FieldRegisterNumber), nil
	case !errors.Is(err, storage.ErrNotFound):
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return RegisterResult{}, wrapError(op, ErrStorage, msgStorageFailure, err)
	}

	student = validation.Normalize(student)
	student.DocumentPath = "" // only an upload sets it

	hash, err := s.hasher.Hash(student.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
			return RegisterResult{}, wrapError(op, ErrValidation, msgPasswordTooLong, err)
		}
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return RegisterResult{}, wrapError(op, ErrInternal, msgUnexpected, err)
	}
	student.Password = hash

	if err := s.store.CreateStudent(student); err != nil {
		var dup *storage.DuplicateError
		if errors.As(err, &dup) {
			return duplicateResult(dup.Field), nil
		}
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return RegisterResult{}, wrapError(op, ErrStorage, msgStorageFailure, err)
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	return RegisterResult{Message: MsgRegistered}, nil
}

func duplicateResult(field string) RegisterResult {
	metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()

	return RegisterResult{Exists: true, Field: field, Message: conflictMessage(field)}
}

func conflictMessage(field string) string {
	if field == storage.FieldEmail {
		return msgEmailExists
	}
	return msgRegisterNoExists
}
