package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/SheetEdit/internal/logging"
)

// Decoder turns an uploaded file into a workbook. Row 0 of every sheet is
// the header, independent of any type annotations the file format carries.
type Decoder interface {
	Decode(fileName string, data []byte) (Workbook, error)
}

// ServiceConfig holds tunables for the service. Zero values take defaults.
type ServiceConfig struct {
	MaxConcurrentDecodes int
	DecodeWait           time.Duration
	SessionTTL           time.Duration
	MaxSessions          int
}

// Service is the entry point for every editor operation. It owns the
// session store, bounds decode concurrency, and writes the audit trail.
type Service struct {
	store   *SessionStore
	limiter *DecodeLimiter
	decoder Decoder
	audit   AuditSink
}

// NewService creates a Service. A nil audit sink disables auditing.
func NewService(decoder Decoder, audit AuditSink, cfg ServiceConfig) *Service {
	return &Service{
		store:   NewSessionStore(cfg.SessionTTL, cfg.MaxSessions),
		limiter: NewDecodeLimiter(cfg.MaxConcurrentDecodes, cfg.DecodeWait),
		decoder: decoder,
		audit:   audit,
	}
}

// Load decodes an uploaded file and opens a session over it.
func (s *Service) Load(ctx context.Context, fileName string, data []byte) (*Session, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	wb, err := s.decoder.Decode(fileName, data)
	s.limiter.Release()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fileName, err)
	}

	sess, err := s.store.Create(fileName, wb, data)
	if err != nil {
		return nil, err
	}

	logging.WithFields(ctx, "session_id", sess.ID, "file", fileName).Info("workbook loaded",
		"sheets", len(wb),
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	entry := newAuditEntry(ctx, ActionWorkbookLoad, sess)
	entry.Detail = map[string]any{"sheets": wb.SheetNames(), "bytes": len(data)}
	s.record(ctx, entry)
	return sess, nil
}

// Session returns the session with id.
func (s *Service) Session(id string) (*Session, error) {
	return s.store.Get(id)
}

// Close discards a session.
func (s *Service) Close(ctx context.Context, id string) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	s.store.Delete(id)
	s.record(ctx, newAuditEntry(ctx, ActionWorkbookClose, sess))
	return nil
}

// SelectSheet switches the active sheet of a session.
func (s *Service) SelectSheet(ctx context.Context, id string, index int) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if err := sess.SelectSheet(index); err != nil {
		return err
	}
	entry := newAuditEntry(ctx, ActionSheetSelect, sess)
	entry.Detail = map[string]any{"index": index}
	s.record(ctx, entry)
	return nil
}

// EditCell validates and applies one cell edit. Rejected edits are audited
// and returned as *InvalidValueError.
func (s *Service) EditCell(ctx context.Context, id string, row, col int, value string) (EditResult, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return EditResult{}, err
	}

	result, err := sess.EditCell(row, col, value)
	if err != nil {
		if iv, ok := err.(*InvalidValueError); ok {
			entry := newAuditEntry(ctx, ActionCellReject, sess)
			entry.Row, entry.Column, entry.NewValue = row, col, value
			entry.Detail = map[string]any{"type": string(iv.Type)}
			s.record(ctx, entry)
		}
		return EditResult{}, err
	}

	entry := newAuditEntry(ctx, ActionCellEdit, sess)
	entry.Sheet = result.Sheet
	entry.Row = result.SourceRow
	entry.Column = result.Column
	entry.OldValue = result.OldValue.String()
	entry.NewValue = result.NewValue.String()
	s.record(ctx, entry)
	return result, nil
}

// AddRow appends an empty row to the active sheet.
func (s *Service) AddRow(ctx context.Context, id string) (int, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return 0, err
	}
	row, err := sess.AddRow()
	if err != nil {
		return 0, err
	}
	entry := newAuditEntry(ctx, ActionRowAdd, sess)
	entry.Row = row
	s.record(ctx, entry)
	return row, nil
}

// ApplyFilters sets the column filters, global search, and mode.
func (s *Service) ApplyFilters(ctx context.Context, id string, filters []string, search string, mode FilterMode) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if err := sess.ApplyFilters(filters, search, mode); err != nil {
		return err
	}
	entry := newAuditEntry(ctx, ActionFilterApply, sess)
	entry.Detail = map[string]any{"filters": filters, "search": search, "mode": string(mode)}
	s.record(ctx, entry)
	return nil
}

// ApplyExpression sets or removes the expression filter.
func (s *Service) ApplyExpression(ctx context.Context, id, expr string) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if err := sess.ApplyExpression(expr); err != nil {
		return err
	}
	entry := newAuditEntry(ctx, ActionFilterApply, sess)
	entry.Detail = map[string]any{"expression": expr}
	s.record(ctx, entry)
	return nil
}

// ClearFilters resets the filter state of a session.
func (s *Service) ClearFilters(ctx context.Context, id string) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	sess.ClearFilters()
	s.record(ctx, newAuditEntry(ctx, ActionFilterClear, sess))
	return nil
}

// Export returns the sheets for an export and records it. format is only
// used for the audit trail; encoding happens outside the core.
func (s *Service) Export(ctx context.Context, id string, source ExportSource, scope ExportScope, format string) (*Session, Workbook, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, nil, err
	}
	sheets, err := sess.Export(source, scope)
	if err != nil {
		return nil, nil, err
	}
	entry := newAuditEntry(ctx, ActionExport, sess)
	entry.Detail = map[string]any{
		"format": format,
		"source": string(source),
		"scope":  string(scope),
		"sheets": sheets.SheetNames(),
	}
	s.record(ctx, entry)
	return sess, sheets, nil
}

// StartSweeper evicts idle sessions until ctx is cancelled.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	s.store.StartSweeper(ctx, interval)
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	return s.store.Len()
}

// DecodeStatus returns the decode limiter state.
func (s *Service) DecodeStatus() DecodeLimiterStatus {
	return s.limiter.Status()
}

// WaitForDecodes blocks until in-flight decodes finish or ctx is done.
func (s *Service) WaitForDecodes(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// record writes an audit entry. Failures are logged and never surface to
// the caller: the audit trail must not block editing.
func (s *Service) record(ctx context.Context, entry AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("audit write failed",
			"action", entry.Action,
			"session_id", entry.SessionID,
			"error", err,
		)
	}
}
