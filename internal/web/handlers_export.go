package web

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/JonMunkholm/SheetEdit/internal/audit"
	"github.com/JonMunkholm/SheetEdit/internal/codec"
	"github.com/JonMunkholm/SheetEdit/internal/core"
	"github.com/go-chi/chi/v5"
)

// handleExport encodes the filtered or original dataset, for the active
// sheet or all sheets, as xlsx, json, or pdf.
//
// Query parameters: source=filtered|original, scope=current|all.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	format, err := codec.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	q := r.URL.Query()
	source := core.ParseExportSource(q.Get("source"))
	scope := core.ParseExportScope(q.Get("scope"))

	_, sheets, err := s.service.Export(r.Context(), sess.ID, source, scope, string(format))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Encode fully before writing so a failure can still be reported.
	var buf bytes.Buffer
	if err := s.encoder.Encode(&buf, format, sheets, scope); err != nil {
		s.respondError(w, r, fmt.Errorf("encode %s: %w", format, err))
		return
	}

	sheetName := ""
	if len(sheets) > 0 {
		sheetName = sheets[0].Name
	}
	name := codec.FileName(format, source, scope, sheetName)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", attachment(name))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleOriginal returns the uploaded file byte for byte.
func (s *Server) handleOriginal(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	ct := mime.TypeByExtension(filepath.Ext(sess.FileName))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", attachment(filepath.Base(sess.FileName)))
	w.WriteHeader(http.StatusOK)
	w.Write(sess.SourceBytes())
}

// handleAuditHistory lists the audit trail of a session, newest first.
// It needs the database-backed audit store.
func (s *Server) handleAuditHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, "audit history requires a database", "AUD001")
		return
	}
	sess := sessionFrom(r)
	q := r.URL.Query()
	entries, err := s.history.Query(r.Context(), audit.QueryOptions{
		SessionID: sess.ID,
		Action:    core.AuditAction(q.Get("action")),
		Severity:  core.AuditSeverity(q.Get("severity")),
		Limit:     parseIntParam(r, "limit", audit.DefaultQueryLimit),
		Offset:    parseIntParam(r, "offset", 0),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func attachment(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}
