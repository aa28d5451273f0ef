package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/SheetEdit/internal/core"
)

// DBTX is the subset of pgxpool.Pool, pgx.Conn, and pgx.Tx the sink uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DefaultQueryLimit caps Query results when no limit is given.
const DefaultQueryLimit = 100

const schema = `
CREATE TABLE IF NOT EXISTS editor_audit_log (
	id          UUID PRIMARY KEY,
	action      TEXT NOT NULL,
	severity    TEXT NOT NULL,
	session_id  TEXT NOT NULL,
	file_name   TEXT,
	sheet       TEXT,
	row_index   INTEGER,
	column_index INTEGER,
	old_value   TEXT,
	new_value   TEXT,
	detail      JSONB,
	ip_address  INET,
	user_agent  TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS editor_audit_log_session_idx ON editor_audit_log (session_id, created_at DESC);
`

// PostgresSink persists audit entries in the editor_audit_log table.
// Workbook contents are never stored; only the trail of actions is.
type PostgresSink struct {
	db DBTX
}

// NewPostgresSink creates a sink over db. Call EnsureSchema before use.
func NewPostgresSink(db DBTX) *PostgresSink {
	return &PostgresSink{db: db}
}

// EnsureSchema creates the audit table and index if they do not exist.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Record implements core.AuditSink.
func (s *PostgresSink) Record(ctx context.Context, e core.AuditEntry) error {
	var detail []byte
	if len(e.Detail) > 0 {
		var err error
		detail, err = json.Marshal(e.Detail)
		if err != nil {
			detail = nil
		}
	}

	row, col := cellCoords(e)
	_, err := s.db.Exec(ctx, `INSERT INTO editor_audit_log
		(id, action, severity, session_id, file_name, sheet, row_index, column_index,
		 old_value, new_value, detail, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, string(e.Action), string(e.Severity), e.SessionID,
		toText(e.FileName), toText(e.Sheet), row, col,
		toText(e.OldValue), toText(e.NewValue), detail, parseIP(e.IPAddress),
		toText(e.UserAgent), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// QueryOptions filters a Query.
type QueryOptions struct {
	SessionID string
	Action    core.AuditAction
	Severity  core.AuditSeverity
	Since     time.Time
	Limit     int
	Offset    int
}

// Query returns entries matching opts, newest first.
func (s *PostgresSink) Query(ctx context.Context, opts QueryOptions) ([]core.AuditEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultQueryLimit
	}

	wb := newWhereBuilder()
	wb.add("session_id", opts.SessionID)
	wb.add("action", string(opts.Action))
	wb.add("severity", string(opts.Severity))
	if !opts.Since.IsZero() {
		wb.addSince("created_at", opts.Since)
	}
	where, args := wb.build()

	query := `SELECT id, action, severity, session_id, file_name, sheet, row_index, column_index,
		old_value, new_value, detail, ip_address, user_agent, created_at
		FROM editor_audit_log` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", wb.nextArg(), wb.nextArg()+1)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]core.AuditEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (core.AuditEntry, error) {
	var (
		e                                   core.AuditEntry
		id                                  pgtype.UUID
		action, severity                    string
		fileName, sheet, oldValue, newValue pgtype.Text
		userAgent                           pgtype.Text
		rowIndex, colIndex                  pgtype.Int4
		detail                              []byte
		ip                                  *netip.Addr
	)
	err := row.Scan(&id, &action, &severity, &e.SessionID, &fileName, &sheet, &rowIndex, &colIndex,
		&oldValue, &newValue, &detail, &ip, &userAgent, &e.CreatedAt)
	if err != nil {
		return core.AuditEntry{}, fmt.Errorf("scan audit entry: %w", err)
	}

	if id.Valid {
		e.ID = fmt.Sprintf("%x-%x-%x-%x-%x", id.Bytes[0:4], id.Bytes[4:6], id.Bytes[6:8], id.Bytes[8:10], id.Bytes[10:16])
	}
	e.Action = core.AuditAction(action)
	e.Severity = core.AuditSeverity(severity)
	e.FileName = fileName.String
	e.Sheet = sheet.String
	e.OldValue = oldValue.String
	e.NewValue = newValue.String
	e.UserAgent = userAgent.String
	e.Row = int(rowIndex.Int32)
	e.Column = int(colIndex.Int32)
	if ip != nil {
		e.IPAddress = ip.String()
	}
	if len(detail) > 0 {
		_ = json.Unmarshal(detail, &e.Detail)
	}
	return e, nil
}

// whereBuilder assembles a parameterized WHERE clause. Empty values are
// skipped so callers can add every optional filter unconditionally.
type whereBuilder struct {
	clauses []string
	args    []any
}

func newWhereBuilder() *whereBuilder {
	return &whereBuilder{}
}

func (w *whereBuilder) add(column, value string) {
	if value == "" {
		return
	}
	w.args = append(w.args, value)
	w.clauses = append(w.clauses, fmt.Sprintf("%s = $%d", column, len(w.args)))
}

func (w *whereBuilder) addSince(column string, t time.Time) {
	w.args = append(w.args, t)
	w.clauses = append(w.clauses, fmt.Sprintf("%s >= $%d", column, len(w.args)))
}

// nextArg returns the placeholder index for the next argument.
func (w *whereBuilder) nextArg() int {
	return len(w.args) + 1
}

func (w *whereBuilder) build() (string, []any) {
	if len(w.clauses) == 0 {
		return "", w.args
	}
	return " WHERE " + strings.Join(w.clauses, " AND "), w.args
}

func toText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// cellCoords returns the row and column for actions that target a cell or
// row, and NULLs for everything else.
func cellCoords(e core.AuditEntry) (pgtype.Int4, pgtype.Int4) {
	switch e.Action {
	case core.ActionCellEdit, core.ActionCellReject:
		return pgtype.Int4{Int32: int32(e.Row), Valid: true}, pgtype.Int4{Int32: int32(e.Column), Valid: true}
	case core.ActionRowAdd:
		return pgtype.Int4{Int32: int32(e.Row), Valid: true}, pgtype.Int4{}
	default:
		return pgtype.Int4{}, pgtype.Int4{}
	}
}

// parseIP strips any port and returns nil when ip is not an address.
func parseIP(ip string) *netip.Addr {
	if ip == "" {
		return nil
	}
	host := ip
	if h, _, err := net.SplitHostPort(ip); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil
	}
	return &addr
}
