package records

import (
	"errors"

	"github.com/aanand-mishra/student-records/internal/auth"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/validation"
)

// UpdateProfile replaces the stored record with the payload. The payload
// is the whole record: fields left empty are stored empty, except that
// an empty password keeps the current one. aadharDocumentPath in the
// payload is ignored; the stored value is kept.
func (s *Service) UpdateProfile(student types.Student) (types.Student, error) {
	const op = "UpdateProfile"

	current, err := s.store.GetStudentByRegisterNumber(student.RegisterNumber)
	if err != nil {
		return types.Student{}, lookupError(op, err, msgUserNotFound)
	}

	if err := s.validator.ValidateProfile(student); err != nil {
		return types.Student{}, wrapError(op, ErrValidation, err.Error(), err)
	}

	student = validation.Normalize(student)

	if student.Password == "" {
		student.Password = current.Password
	} else {
		hash, err := s.hasher.Hash(student.Password)
		if err != nil {
			if errors.Is(err, auth.ErrPasswordTooLong) {
				return types.Student{}, wrapError(op, ErrValidation, msgPasswordTooLong, err)
			}
			return types.Student{}, wrapError(op, ErrInternal, msgUnexpected, err)
		}
		student.Password = hash
	}

	// Only UploadDocument writes the document path.
	student.DocumentPath = current.DocumentPath

	updated, err := s.store.UpdateStudent(student)
	if err != nil {
		var dup *storage.DuplicateError
		if errors.As(err, &dup) {
			return types.Student{}, wrapError(op, ErrDuplicate, conflictMessage(dup.Field), err)
		}
		return types.Student{}, lookupError(op, err, msgUserNotFound)
	}

	return updated.Public(), nil
}
