// Package document contains the Aadhar upload handler.
package document

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/http/handlers"
	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Service is the part of *records.Service this handler uses.
type Service interface {
	UploadDocument(up records.Upload) (string, error)
}

// uploadResponse mirrors what the web client reads after an upload.
type uploadResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// UploadAadhar handles POST /api/documents/uploadAadhar
//
// multipart/form-data fields:
//
//	file            the document (JPG, PNG or PDF)
//	registerNumber  the owning student
//
// Responses (all JSON):
//
//	200 { "message": "Aadhar document uploaded successfully!", "filePath": "20230010101-aadhar.png" }
//	400 empty file, disallowed type, or not a multipart body
//	404 no student with that register number
//	500 the file could not be written
//
// maxBytes caps the whole request body.
// ─────────────────────────────────────────────────────────────────────────────
func UploadAadhar(svc Service, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				response.WriteJSON(w, http.StatusRequestEntityTooLarge,
					uploadResponse{Message: "File is too large."})
			case errors.Is(err, http.ErrMissingFile):
				response.WriteJSON(w, http.StatusBadRequest,
					uploadResponse{Message: "Please select a file to upload."})
			default:
				response.WriteJSON(w, http.StatusBadRequest,
					uploadResponse{Message: "Invalid upload request: " + err.Error()})
			}
			return
		}
		defer file.Close()

		registerNumber := r.FormValue("registerNumber")
		slog.Info("uploading aadhar document",
			slog.String("register_number", registerNumber),
			slog.String("filename", header.Filename),
			slog.Int64("size", header.Size))

		name, err := svc.UploadDocument(records.Upload{
			RegisterNumber: registerNumber,
			Filename:       header.Filename,
			ContentType:    header.Header.Get("Content-Type"),
			Size:           header.Size,
			Body:           file,
		})
		if err != nil {
			status := handlers.StatusFor(err)
			if status >= http.StatusInternalServerError {
				slog.Error("document upload failed",
					slog.String("register_number", registerNumber),
					slog.String("error", err.Error()))
			}
			response.WriteJSON(w, status, uploadResponse{Message: records.Message(err)})
			return
		}

		slog.Info("aadhar document stored",
			slog.String("register_number", registerNumber),
			slog.String("file", name))
		response.WriteJSON(w, http.StatusOK, uploadResponse{
			Message:  records.MsgDocumentUploaded,
			FilePath: name,
		})
	}
}
