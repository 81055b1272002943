package web

// errors.go renders errors for API clients and the HTMX UI.
//
// The technical error is logged with the request ID; the client receives the
// message, action and code from core.MapError, as JSON on /api routes and as
// an alert fragment for HTMX requests.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/logging"
	"github.com/JonMunkholm/linecap/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	RunID   string `json:"runId,omitempty"`
}

// respondError logs err and writes its user-facing form with the status
// chosen by statusFor.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondRunError(w, r, err, "")
}

// respondRunError is respondError for failures that belong to a run.
func (s *Server) respondRunError(w http.ResponseWriter, r *http.Request, err error, runID string) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"run_id", runID,
	)

	if errors.Is(err, core.ErrTooManyRuns) {
		w.Header().Set("Retry-After", "30")
	}

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		writeJSON(w, status, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
			RunID:   runID,
		})
	default:
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", status)
	}
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnknownLayout):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrInvalidLayout), errors.Is(err, core.ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrSink):
		return http.StatusBadGateway
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}

	switch core.MapError(err).Code {
	case "RUN003":
		return http.StatusGatewayTimeout
	case "RUN002":
		// client went away; nginx convention
		return 499
	case "FILE001":
		return http.StatusRequestEntityTooLarge
	case "FILE002", "FILE003", "EXT003":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
