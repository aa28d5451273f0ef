package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/JonMunkholm/SheetEdit/internal/core"
)

func TestLogSink_Record(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sink.Record(context.Background(), core.AuditEntry{
		ID:        "a1",
		Action:    core.ActionCellEdit,
		Severity:  core.SeverityMedium,
		SessionID: "s1",
		Sheet:     "Orders",
		Row:       2,
		Column:    1,
		OldValue:  "3",
		NewValue:  "10",
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"action":"cell_edit"`, `"session_id":"s1"`, `"sheet":"Orders"`, `"new_value":"10"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

type failingSink struct{ err error }

func (f failingSink) Record(context.Context, core.AuditEntry) error { return f.err }

type countingSink struct{ n int }

func (c *countingSink) Record(context.Context, core.AuditEntry) error {
	c.n++
	return nil
}

func TestMulti_Record(t *testing.T) {
	boom := errors.New("boom")
	counter := &countingSink{}
	m := Multi{failingSink{err: boom}, nil, counter}

	err := m.Record(context.Background(), core.AuditEntry{Action: core.ActionExport})
	if !errors.Is(err, boom) {
		t.Errorf("Record() error = %v, want boom", err)
	}
	if counter.n != 1 {
		t.Errorf("later sink called %d times, want 1", counter.n)
	}
}

func TestWhereBuilder(t *testing.T) {
	wb := newWhereBuilder()
	wb.add("session_id", "s1")
	wb.add("action", "")
	wb.add("severity", "high")

	where, args := wb.build()
	if where != " WHERE session_id = $1 AND severity = $2" {
		t.Errorf("where = %q", where)
	}
	if len(args) != 2 || wb.nextArg() != 3 {
		t.Errorf("args = %v, nextArg = %d; want 2 args and 3", args, wb.nextArg())
	}

	empty, _ := newWhereBuilder().build()
	if empty != "" {
		t.Errorf("empty builder where = %q, want empty", empty)
	}
}

func TestParseIP(t *testing.T) {
	tests := map[string]string{
		"10.0.0.1":       "10.0.0.1",
		"10.0.0.1:52100": "10.0.0.1",
		"[::1]:80":       "::1",
		"not-an-ip":      "",
		"":               "",
	}
	for in, want := range tests {
		got := parseIP(in)
		switch {
		case want == "" && got != nil:
			t.Errorf("parseIP(%q) = %v, want nil", in, got)
		case want != "" && (got == nil || got.String() != want):
			t.Errorf("parseIP(%q) = %v, want %s", in, got, want)
		}
	}
}

func TestCellCoords(t *testing.T) {
	row, col := cellCoords(core.AuditEntry{Action: core.ActionCellEdit, Row: 3, Column: 0})
	if !row.Valid || !col.Valid || row.Int32 != 3 || col.Int32 != 0 {
		t.Errorf("cell edit coords = %v, %v", row, col)
	}
	row, col = cellCoords(core.AuditEntry{Action: core.ActionExport})
	if row.Valid || col.Valid {
		t.Errorf("export coords = %v, %v; want NULLs", row, col)
	}
}
