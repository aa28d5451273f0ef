// Package codec converts between file bytes and core workbooks.
//
// Decoders read uploaded files into a core.Workbook; encoders write the
// shapes produced by package core as xlsx, json, or pdf. Nothing here
// filters, validates, or infers: those rules live in core.
package codec

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/SheetEdit/internal/core"
)

// Format is an export encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// Formats lists every export format in display order.
var Formats = []Format{FormatXLSX, FormatJSON, FormatPDF}

// ParseFormat converts a format name (with or without a leading dot) to a
// Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatXLSX, FormatJSON, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: export format %q", core.ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// FileName returns the download name for an export. Single-sheet exports
// are named after the sheet; workbook-wide exports get a fixed name.
func FileName(f Format, source core.ExportSource, scope core.ExportScope, sheet string) string {
	var base string
	switch {
	case scope == core.ScopeCurrent && source == core.SourceFiltered:
		base = safeFileBase(sheet) + "_filtered"
	case scope == core.ScopeCurrent:
		base = safeFileBase(sheet)
	case source == core.SourceFiltered && f == FormatPDF:
		base = "filtered_all_sheets_data"
	case source == core.SourceFiltered:
		base = "filtered_data"
	case f == FormatPDF:
		base = "all_sheets_data"
	default:
		base = "exported_data"
	}
	return base + "." + string(f)
}

// safeFileBase strips characters that break Content-Disposition or paths.
func safeFileBase(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "sheet"
	}
	return name
}
