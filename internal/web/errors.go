package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler error goes through respondError, which logs the technical
// error with the request ID, maps it to a user-facing message through
// core.MapError, and renders it as JSON or HTML depending on the client.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/SheetEdit/internal/core"
	"github.com/JonMunkholm/SheetEdit/internal/web/views"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an error.
func statusFor(err error) int {
	var invalid *core.InvalidValueError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrTooManySessions), errors.Is(err, core.ErrTooManyDecodes):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrHeaderEdit),
		errors.Is(err, core.ErrRowOutOfRange),
		errors.Is(err, core.ErrColumnOutOfRange),
		errors.Is(err, core.ErrSheetOutOfRange),
		errors.Is(err, core.ErrInvalidExpression),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, errNoFile),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and answers with the status statusFor picks.
// Browser requests inside a workbook get the editor back with an alert so
// the user keeps their place; other HTML requests get an error page.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, userMsg := s.logError(r, err)

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status)
		return
	}
	if sess := sessionFrom(r); sess != nil && !errors.Is(err, core.ErrSessionNotFound) {
		s.renderEditor(w, r, sess, alertFor(userMsg), status)
		return
	}
	respondErrorHTML(w, r, userMsg, status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders a standalone error page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	views.ErrorPage(views.Alert{Message: msg.Message, Action: msg.Action, Code: msg.Code}).Render(r.Context(), w)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
