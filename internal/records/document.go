package records

import (
	"errors"
	"io"

	"github.com/aanand-mishra/student-records/internal/documents"
	"github.com/aanand-mishra/student-records/internal/metrics"
	"github.com/aanand-mishra/student-records/internal/storage"
)

// Upload is one Aadhar document as received from the client.
type Upload struct {
	RegisterNumber string
	Filename       string // original client filename; only its extension is kept
	ContentType    string // declared by the client
	Size           int64
	Body           io.Reader
}

// UploadDocument stores the file as <registerNumber>-aadhar<ext> and
// records that name on the student. It returns the stored name.
//
// A second upload for the same student replaces the first file.
func (s *Service) UploadDocument(up Upload) (string, error) {
	const op = "UploadDocument"

	outcome := metrics.OutcomeError
	defer func() {
		metrics.DocumentUploadsTotal.WithLabelValues(outcome).Inc()
	}()

	if up.Body == nil || up.Size == 0 {
		outcome = metrics.OutcomeInvalid
		return "", newError(op, ErrInvalidFile, msgEmptyFile)
	}
	if !documents.Allowed(up.ContentType) {
		outcome = metrics.OutcomeInvalid
		return "", newError(op, ErrInvalidFile, msgInvalidFileType)
	}

	student, err := s.store.GetStudentByRegisterNumber(up.RegisterNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			outcome = metrics.OutcomeNotFound
		}
		return "", lookupError(op, err, msgUploadNoUser)
	}

	name := documents.FileName(up.RegisterNumber, up.Filename)

	if err := s.docs.Save(name, up.Body); err != nil {
		return "", wrapError(op, ErrStorage, msgUploadIOFailure, err)
	}

	if err := s.store.SetDocumentPath(up.RegisterNumber, name); err != nil {
		// The record still points at its previous file, if any. A new name
		// is an orphan; an overwritten one stays since the record uses it.
		if student.DocumentPath != name {
			if rmErr := s.docs.Remove(name); rmErr != nil {
				err = errors.Join(err, rmErr)
			}
		}
		return "", wrapError(op, ErrInternal, msgUnexpected, err)
	}

	outcome = metrics.OutcomeOK
	return name, nil
}
