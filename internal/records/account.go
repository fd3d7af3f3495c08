package records

import (
	"errors"
	"strings"

	"github.com/aanand-mishra/student-records/internal/auth"
	"github.com/aanand-mishra/student-records/internal/metrics"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// SignIn checks a register number / password pair. On success it
// returns the stored record with the password hash cleared.
func (s *Service) SignIn(creds types.Credentials) (types.Student, error) {
	const op = "SignIn"

	student, err := s.store.GetStudentByRegisterNumber(creds.RegisterNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.SignInsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
		} else {
			metrics.SignInsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return types.Student{}, lookupError(op, err, msgUserNotFound)
	}

	if !s.hasher.Matches(student.Password, creds.Password) {
		metrics.SignInsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return types.Student{}, newError(op, ErrInvalidCredentials, msgInvalidPassword)
	}

	metrics.SignInsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	return student.Public(), nil
}

// ResetPasswordByEmail is the forgot-password flow.
func (s *Service) ResetPasswordByEmail(email, newPassword string) error {
	return s.resetPassword("ResetPasswordByEmail", "email", newPassword, func() (types.Student, error) {
		return s.store.GetStudentByEmail(email)
	})
}

// ResetPasswordByRegisterNumber is the reset flow used by a signed-in
// student.
func (s *Service) ResetPasswordByRegisterNumber(registerNumber, newPassword string) error {
	return s.resetPassword("ResetPasswordByRegisterNumber", "register_number", newPassword, func() (types.Student, error) {
		return s.store.GetStudentByRegisterNumber(registerNumber)
	})
}

// resetPassword refuses a new password equal to the current one and
// otherwise overwrites the stored hash.
func (s *Service) resetPassword(op, by, newPassword string, lookup func() (types.Student, error)) error {
	outcome := metrics.OutcomeError
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues(by, outcome).Inc()
	}()

	student, err := lookup()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			outcome = metrics.OutcomeNotFound
		}
		return lookupError(op, err, msgUserNotFound)
	}

	if s.hasher.Matches(student.Password, newPassword) {
		outcome = metrics.OutcomeRejected
		return newError(op, ErrSamePassword, msgSamePassword)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			outcome = metrics.OutcomeInvalid
			return wrapError(op, ErrValidation, msgPasswordTooLong, err)
		}
		return wrapError(op, ErrInternal, msgUnexpected, err)
	}

	if err := s.store.UpdatePassword(student.RegisterNumber, hash); err != nil {
		return lookupError(op, err, msgUserNotFound)
	}

	outcome = metrics.OutcomeOK
	return nil
}

// Details returns the record for registerNumber without its password.
// Surrounding whitespace in the query value is ignored.
func (s *Service) Details(registerNumber string) (types.Student, error) {
	student, err := s.store.GetStudentByRegisterNumber(strings.TrimSpace(registerNumber))
	if err != nil {
		return types.Student{}, lookupError("Details", err, msgUserNotFound)
	}
	return student.Public(), nil
}
