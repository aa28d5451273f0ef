// Package audit provides destinations for the editor's audit trail.
//
// Every sink implements core.AuditSink. LogSink writes entries to the
// structured log and is always available; PostgresSink persists them when a
// database is configured. Multi fans an entry out to several sinks.
package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/JonMunkholm/SheetEdit/internal/core"
	"github.com/JonMunkholm/SheetEdit/internal/logging"
)

// LogSink writes audit entries as structured log records.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink. A nil logger uses the request logger from
// the context at record time.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Record implements core.AuditSink.
func (s *LogSink) Record(ctx context.Context, e core.AuditEntry) error {
	logger := s.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	attrs := []any{
		"audit_id", e.ID,
		"action", string(e.Action),
		"severity", string(e.Severity),
		"session_id", e.SessionID,
	}
	if e.FileName != "" {
		attrs = append(attrs, "file", e.FileName)
	}
	if e.Sheet != "" {
		attrs = append(attrs, "sheet", e.Sheet)
	}
	if e.Action == core.ActionCellEdit || e.Action == core.ActionCellReject {
		attrs = append(attrs, "row", e.Row, "column", e.Column, "old_value", e.OldValue, "new_value", e.NewValue)
	}
	if len(e.Detail) > 0 {
		attrs = append(attrs, "detail", e.Detail)
	}
	if e.IPAddress != "" {
		attrs = append(attrs, "ip", e.IPAddress)
	}

	logger.Info("audit", attrs...)
	return nil
}

// Multi records each entry in every sink and joins their errors.
type Multi []core.AuditSink

// Record implements core.AuditSink.
func (m Multi) Record(ctx context.Context, e core.AuditEntry) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
