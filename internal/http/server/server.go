// Package server assembles the route table and the *http.Server.
package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/http/handlers/document"
	"github.com/aanand-mishra/student-records/internal/http/handlers/password"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Routes builds the full handler: every route wrapped in the shared
// middleware.
//
// Route table:
//
//	POST /api/signup                  → register a student
//	POST /api/signin                  → check register number + password
//	GET  /api/user/details            → fetch a record (?registerNumber=)
//	PUT  /api/user/update             → replace a record
//	POST /auth/forgot-password        → reset password by email
//	POST /auth/reset-password         → reset password by register number
//	POST /api/documents/uploadAadhar  → upload the Aadhar document
//	GET  /metrics                     → Prometheus metrics
//	GET  /healthz                     → liveness
func Routes(cfg *config.Config, svc *records.Service, log *slog.Logger) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("POST /api/signup", student.SignUp(svc))
	router.HandleFunc("POST /api/signin", student.SignIn(svc))
	router.HandleFunc("GET /api/user/details", student.Details(svc))
	router.HandleFunc("PUT /api/user/update", student.Update(svc))

	router.HandleFunc("POST /auth/forgot-password", password.Forgot(svc))
	router.HandleFunc("POST /auth/reset-password", password.Reset(svc))

	router.HandleFunc("POST /api/documents/uploadAadhar",
		document.UploadAadhar(svc, cfg.Documents.MaxUploadBytes))

	router.Handle("GET /metrics", promhttp.Handler())
	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	})

	return middleware.Chain(router,
		middleware.RequestID,
		middleware.Logger(log),
		middleware.Recover(log),
		middleware.CORS(cfg.CORS.AllowedOrigin),
	)
}

// New returns an *http.Server for cfg. It is configured but not started.
func New(cfg *config.Config, svc *records.Service, log *slog.Logger) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: Routes(cfg, svc, log),

		// Production hardening — timeouts prevent slow-client attacks.
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
}
