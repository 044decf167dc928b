package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gymadmin/internal/core"
	"gymadmin/internal/log"
	"gymadmin/internal/middleware/trace"
)

// notFoundMessages maps the service's lookup wrap prefixes onto the 404
// message shown to clients.
var notFoundMessages = []struct {
	prefix  string
	message string
}{
	{"get member", "Member not found"},
	{"get plan", "Membership plan not found"},
	{"get subscription", "Subscription not found"},
	{"get payment", "Payment not found"},
	{"get attendance", "Attendance record not found"},
	{"get equipment", "Equipment not found"},
	{"get setting", "Setting not found"},
}

// writeError maps err onto the error envelope. fallback names the resource
// of the route for not-found errors the service did not attribute.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if ve, ok := core.AsValidation(err); ok {
		ValidationErrorResponse(ve).Write(w)
		return
	}
	switch {
	case errors.Is(err, errBadRequest):
		msg := strings.TrimPrefix(err.Error(), errBadRequest.Error()+": ")
		BadRequestError("Invalid request body: " + msg).Write(w)
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidDate):
		BadRequestError("Invalid request body: " + err.Error()).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(notFoundMessage(err, fallback)).Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeInternal,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldRequestID, trace.GetRequestID(r.Context()))
		InternalServerError().Write(w)
	}
}

func notFoundMessage(err error, fallback string) string {
	msg := err.Error()
	for _, nf := range notFoundMessages {
		if strings.HasPrefix(msg, nf.prefix+":") || strings.HasPrefix(msg, nf.prefix+" ") {
			return nf.message
		}
	}
	return fallback
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports 503 until the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	checks := map[string]string{"store": "ok"}
	status, code := "ready", http.StatusOK
	if err := s.svc.Ping(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		checks["store"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}
