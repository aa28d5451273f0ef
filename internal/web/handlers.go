package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/SheetEdit/internal/codec"
	"github.com/JonMunkholm/SheetEdit/internal/core"
	"github.com/JonMunkholm/SheetEdit/internal/logging"
	"github.com/JonMunkholm/SheetEdit/internal/web/views"
	"github.com/go-chi/chi/v5/middleware"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 32 << 20

// maxJSONBody caps JSON request bodies for edit and filter calls.
const maxJSONBody = 1 << 20

var (
	errNoFile       = errors.New("no file provided")
	errFileTooLarge = errors.New("file too large")
	errBadRequest   = errors.New("malformed request")
)

func workbookPath(id string) string {
	return "/workbooks/" + url.PathEscape(id)
}

// handleHealth reports liveness plus session and decode load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.SessionCount(),
		"decodes":  s.service.DecodeStatus(),
	})
}

// handleHome renders the upload page.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderHome(w, r, nil, http.StatusOK)
}

func (s *Server) renderHome(w http.ResponseWriter, r *http.Request, alert *views.Alert, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := views.HomeData{Accept: s.accept, MaxFileSize: s.cfg.Upload.MaxFileSize, Alert: alert}
	if err := views.Home(data).Render(r.Context(), w); err != nil {
		slog.Error("render home", "error", err)
	}
}

// handleUpload reads a multipart "file" field and opens a session over it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.uploadFailed(w, r, uploadError(err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.uploadFailed(w, r, errNoFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.uploadFailed(w, r, uploadError(err))
		return
	}

	sess, err := s.service.Load(ctx, header.Filename, data)
	if err != nil {
		s.uploadFailed(w, r, err)
		return
	}

	if wantsJSON(r) {
		s.writeState(w, r, sess, http.StatusCreated)
		return
	}
	http.Redirect(w, r, workbookPath(sess.ID), http.StatusSeeOther)
}

// uploadError keeps size-limit errors intact and marks anything else as a
// malformed upload.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("%w: %v", errFileTooLarge, err)
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// uploadFailed re-renders the upload page with the error for browsers.
func (s *Server) uploadFailed(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) {
		s.respondError(w, r, err)
		return
	}
	status, msg := s.logError(r, err)
	s.renderHome(w, r, alertFor(msg), status)
}

// handleView renders the editor, or returns the session state as JSON.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if wantsJSON(r) {
		s.writeState(w, r, sess, http.StatusOK)
		return
	}
	s.renderEditor(w, r, sess, nil, http.StatusOK)
}

// handleClose discards the session.
func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.service.Close(r.Context(), sess.ID); err != nil {
		s.respondError(w, r, err)
		return
	}
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// writeState writes the session snapshot as JSON.
func (s *Server) writeState(w http.ResponseWriter, r *http.Request, sess *core.Session, status int) {
	st, err := sess.Snapshot()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, status, st)
}

// renderEditor renders the editor page with an optional alert.
func (s *Server) renderEditor(w http.ResponseWriter, r *http.Request, sess *core.Session, alert *views.Alert, status int) {
	st, err := sess.Snapshot()
	if err != nil {
		_, msg := s.logError(r, err)
		respondErrorHTML(w, r, msg, http.StatusInternalServerError)
		return
	}

	formats := make([]string, len(codec.Formats))
	for i, f := range codec.Formats {
		formats[i] = string(f)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := views.EditorData{State: st, Formats: formats, Alert: alert}
	if err := views.Editor(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render editor", "error", err)
	}
}

// logError logs err with request context and returns the status and
// user message to answer with.
func (s *Server) logError(r *http.Request, err error) (int, core.UserMessage) {
	status := statusFor(err)
	msg := core.MapError(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)
	return status, msg
}

func alertFor(msg core.UserMessage) *views.Alert {
	return &views.Alert{Message: msg.Message, Action: msg.Action, Code: msg.Code}
}

// bind decodes a JSON body into dst, or for form posts hands the parsed
// form to fromForm.
func bind(r *http.Request, dst any, fromForm func(url.Values) error) error {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return fromForm(r.PostForm)
}

// formInt parses a required integer form field.
func formInt(values url.Values, key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(values.Get(key)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errBadRequest, key)
	}
	return n, nil
}

// parseIntParam parses a non-negative integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}
