// Package password contains the two password reset handlers. Both answer
// in plain text because the web client displays the body as-is.
package password

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/http/handlers"
	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Service is the part of *records.Service these handlers use.
type Service interface {
	ResetPasswordByEmail(email, newPassword string) error
	ResetPasswordByRegisterNumber(registerNumber, newPassword string) error
}

// Forgot handles POST /auth/forgot-password
//
//	{ "email": "a@x.com", "password": "new secret" }
//
// 200 "Password updated successfully", 400 when the new password equals
// the current one, 404 "User not found".
func Forgot(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PasswordChange
		if err := response.DecodeJSON(r, &req); err != nil {
			response.WriteText(w, http.StatusBadRequest, err.Error())
			return
		}

		err := svc.ResetPasswordByEmail(req.Email, req.Password)
		writeResult(w, err, slog.String("email", req.Email))
	}
}

// Reset handles POST /auth/reset-password
//
//	{ "registerNumber": "20230010101", "password": "new secret" }
//
// Same responses as Forgot.
func Reset(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PasswordChange
		if err := response.DecodeJSON(r, &req); err != nil {
			response.WriteText(w, http.StatusBadRequest, err.Error())
			return
		}

		err := svc.ResetPasswordByRegisterNumber(req.RegisterNumber, req.Password)
		writeResult(w, err, slog.String("register_number", req.RegisterNumber))
	}
}

func writeResult(w http.ResponseWriter, err error, who slog.Attr) {
	if err != nil {
		status := handlers.StatusFor(err)
		if status >= http.StatusInternalServerError {
			slog.Error("password reset failed", who, slog.String("error", err.Error()))
		} else {
			slog.Info("password reset refused", who, slog.String("reason", records.Message(err)))
		}
		response.WriteText(w, status, records.Message(err))
		return
	}

	slog.Info("password reset", who)
	response.WriteText(w, http.StatusOK, records.MsgPasswordUpdated)
}
