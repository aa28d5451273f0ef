package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/JonMunkholm/SheetEdit/internal/core"
)

// Encoder writes exports in any supported Format.
type Encoder struct {
	PDF PDFOptions
}

// Encode writes sheets to w in format f. scope only affects JSON: a
// current-sheet export is a single object, a workbook export an array.
func (e Encoder) Encode(w io.Writer, f Format, sheets core.Workbook, scope core.ExportScope) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, core.MatrixShape(sheets))
	case FormatJSON:
		return WriteJSON(w, sheets, scope)
	case FormatPDF:
		return WritePDF(w, core.TableShapes(sheets), e.PDF)
	default:
		return fmt.Errorf("%w: export format %q", core.ErrUnsupportedFormat, f)
	}
}

// WriteJSON writes the record shape of sheets with two-space indentation.
func WriteJSON(w io.Writer, sheets core.Workbook, scope core.ExportScope) error {
	shape := core.RecordShape(sheets)

	var v any = shape
	if scope == core.ScopeCurrent && len(shape) == 1 {
		v = shape[0]
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
