package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionWorkbookLoad  AuditAction = "workbook_load"
	ActionWorkbookClose AuditAction = "workbook_close"
	ActionSheetSelect   AuditAction = "sheet_select"
	ActionCellEdit      AuditAction = "cell_edit"
	ActionCellReject    AuditAction = "cell_reject"
	ActionRowAdd        AuditAction = "row_add"
	ActionFilterApply   AuditAction = "filter_apply"
	ActionFilterClear   AuditAction = "filter_clear"
	ActionExport        AuditAction = "export"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// AuditEntry is one record in the audit trail.
type AuditEntry struct {
	ID        string         `json:"id"`
	Action    AuditAction    `json:"action"`
	Severity  AuditSeverity  `json:"severity"`
	SessionID string         `json:"sessionId"`
	FileName  string         `json:"fileName,omitempty"`
	Sheet     string         `json:"sheet,omitempty"`
	Row       int            `json:"row,omitempty"`
	Column    int            `json:"column,omitempty"`
	OldValue  string         `json:"oldValue,omitempty"`
	NewValue  string         `json:"newValue,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	IPAddress string         `json:"ipAddress,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// AuditSink stores audit entries. Implementations must be safe for
// concurrent use.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// determineSeverity returns the severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionWorkbookLoad, ActionWorkbookClose, ActionExport:
		return SeverityHigh
	case ActionCellEdit, ActionRowAdd, ActionCellReject:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// newAuditEntry fills id, severity, timestamp, and client details.
func newAuditEntry(ctx context.Context, action AuditAction, s *Session) AuditEntry {
	client := ClientFromContext(ctx)
	e := AuditEntry{
		ID:        uuid.New().String(),
		Action:    action,
		Severity:  determineSeverity(action),
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: time.Now().UTC(),
	}
	if s != nil {
		e.SessionID = s.ID
		e.FileName = s.FileName
	}
	return e
}
