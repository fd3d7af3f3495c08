// Package student contains the HTTP handlers for signup, sign-in and the
// student profile.
//
// HANDLER PATTERN — THE CLOSURE / FACTORY PATTERN:
// Go's router expects handler functions with the signature
//
//	func(http.ResponseWriter, *http.Request)
//
// so each exported function here takes its dependency (the workflow
// service) and returns a handler that closes over it:
//
//	router.HandleFunc("POST /api/signup", student.SignUp(svc))
package student

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/http/handlers"
	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Service is the part of *records.Service these handlers use.
type Service interface {
	Register(student types.Student) (records.RegisterResult, error)
	SignIn(creds types.Credentials) (types.Student, error)
	Details(registerNumber string) (types.Student, error)
	UpdateProfile(student types.Student) (types.Student, error)
}

// signupResponse is the body of every signup answer that got past
// request decoding, duplicates included.
type signupResponse struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// SignUp handles POST /api/signup
//
// Request body: the full student record (see types.Student).
//
// Responses:
//
//	200 { "exists": false, "message": "User registered successfully" }
//	200 { "exists": true,  "error": "User with this email already exists" }
//	400 { "status": "error", "error": "Register number must be exactly 11 digits" }
//	500 { "status": "error", "error": "..." }
//
// A duplicate is deliberately a 200: the client shows it as a normal
// form message rather than a failure.
// ─────────────────────────────────────────────────────────────────────────────
func SignUp(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var student types.Student
		if err := response.DecodeJSON(r, &student); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		slog.Info("registering a student", slog.String("register_number", student.RegisterNumber))

		res, err := svc.Register(student)
		if err != nil {
			writeError(w, "signup failed", err)
			return
		}

		if res.Exists {
			slog.Info("student already exists",
				slog.String("register_number", student.RegisterNumber),
				slog.String("field", res.Field))
			response.WriteJSON(w, http.StatusOK, signupResponse{Exists: true, Error: res.Message})
			return
		}

		slog.Info("student registered", slog.String("register_number", student.RegisterNumber))
		response.WriteJSON(w, http.StatusOK, signupResponse{Exists: false, Message: res.Message})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// SignIn handles POST /api/signin
//
// Request body:
//
//	{ "registerNumber": "20230010101", "password": "..." }
//
// Responses:
//
//	200 { "username": "A", "registerNumber": "20230010101" }
//	400 { "status": "error", "error": "Invalid password" }
//	400 { "status": "error", "error": "User not found" }
//
// Both failures are 400 so the response does not reveal more than the
// message already does.
// ─────────────────────────────────────────────────────────────────────────────
func SignIn(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds types.Credentials
		if err := response.DecodeJSON(r, &creds); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		student, err := svc.SignIn(creds)
		if err != nil {
			status := handlers.StatusFor(err)
			if errors.Is(err, records.ErrNotFound) {
				status = http.StatusBadRequest
			}
			if status >= http.StatusInternalServerError {
				slog.Error("signin failed", slog.String("error", err.Error()))
			}
			response.WriteJSON(w, status, response.ErrorMessage(records.Message(err)))
			return
		}

		slog.Info("student signed in", slog.String("register_number", student.RegisterNumber))
		response.WriteJSON(w, http.StatusOK, map[string]string{
			"username":       student.Username,
			"registerNumber": student.RegisterNumber,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Details handles GET /api/user/details?registerNumber=20230010101
//
// Responses:
//
//	200 the student record (no password)
//	404 "User not found" (plain text)
// ─────────────────────────────────────────────────────────────────────────────
func Details(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerNumber := r.URL.Query().Get("registerNumber")
		slog.Debug("getting student details", slog.String("register_number", registerNumber))

		student, err := svc.Details(registerNumber)
		if err != nil {
			writeTextError(w, "details failed", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/user/update
//
// Request body: the complete student record, register number included.
// Every field is replaced; an empty password keeps the current one.
//
// Responses:
//
//	200 the updated record (no password)
//	400 validation failure (JSON error envelope)
//	404 "User not found" (plain text)
//	409 the new email belongs to another student (JSON error envelope)
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var student types.Student
		if err := response.DecodeJSON(r, &student); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		updated, err := svc.UpdateProfile(student)
		if errors.Is(err, records.ErrNotFound) {
			writeTextError(w, "update failed", err)
			return
		}
		if err != nil {
			writeError(w, "update failed", err)
			return
		}

		slog.Info("student updated", slog.String("register_number", updated.RegisterNumber))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

func writeError(w http.ResponseWriter, what string, err error) {
	status := handlers.StatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(what, slog.String("error", err.Error()))
	}
	response.WriteJSON(w, status, response.ErrorMessage(records.Message(err)))
}

func writeTextError(w http.ResponseWriter, what string, err error) {
	status := handlers.StatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(what, slog.String("error", err.Error()))
	}
	response.WriteText(w, status, records.Message(err))
}
