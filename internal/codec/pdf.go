package codec

import (
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/JonMunkholm/SheetEdit/internal/core"
)

// PDFOptions controls PDF page layout.
type PDFOptions struct {
	Orientation string  // "L" or "P"
	PageSize    string  // fpdf size name, e.g. "A4", "Letter"
	FontSize    float64 // table font size in points
}

func (o PDFOptions) withDefaults() PDFOptions {
	if o.Orientation == "" {
		o.Orientation = "L"
	}
	if o.PageSize == "" {
		o.PageSize = "A4"
	}
	if o.FontSize <= 0 {
		o.FontSize = 9
	}
	return o
}

const (
	pdfMargin     = 10.0
	pdfTitleSize  = 14.0
	pdfCellPad    = 1.5
	pdfLineFactor = 0.5 // mm of row height per point of font size
)

// WritePDF renders each table on its own page: the sheet name as a title,
// then the head row and the body rows. The head row repeats when a table
// runs onto further pages. A workbook with no tables yields one blank page.
func WritePDF(w io.Writer, tables []core.TableShape, opts PDFOptions) error {
	opts = opts.withDefaults()

	pdf := fpdf.New(opts.Orientation, "mm", opts.PageSize, "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetCreationDate(time.Now())
	pdf.SetCreator("sheetedit", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if len(tables) == 0 {
		pdf.AddPage()
	}
	for _, t := range tables {
		renderTable(pdf, tr, t, opts)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func renderTable(pdf *fpdf.Fpdf, tr func(string) string, t core.TableShape, opts PDFOptions) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", pdfTitleSize)
	pdf.CellFormat(0, pdfTitleSize*pdfLineFactor+2, tr(t.SheetName), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	cols := len(t.Head)
	if cols == 0 {
		return
	}

	pageW, pageH := pdf.GetPageSize()
	colW := (pageW - 2*pdfMargin) / float64(cols)
	rowH := opts.FontSize*pdfLineFactor + 2*pdfCellPad
	bottom := pageH - pdfMargin

	head := func() {
		pdf.SetFont("Helvetica", "B", opts.FontSize)
		pdf.SetFillColor(41, 128, 185)
		pdf.SetTextColor(255, 255, 255)
		for _, h := range t.Head {
			pdf.CellFormat(colW, rowH, fitText(pdf, tr, h, colW), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", opts.FontSize)
		pdf.SetTextColor(0, 0, 0)
	}

	head()
	for i, row := range t.Body {
		if pdf.GetY()+rowH > bottom {
			pdf.AddPage()
			head()
		}
		fill := i%2 == 1
		if fill {
			pdf.SetFillColor(245, 245, 245)
		}
		for c := 0; c < cols; c++ {
			var v string
			if c < len(row) {
				v = row[c]
			}
			pdf.CellFormat(colW, rowH, fitText(pdf, tr, v, colW), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fitText translates s for the core fonts and shortens it with a trailing
// ellipsis until it fits in width w at the current font. Truncation works on
// the UTF-8 text so multi-byte characters are never split.
func fitText(pdf *fpdf.Fpdf, tr func(string) string, s string, w float64) string {
	s = strings.ReplaceAll(s, "\n", " ")
	avail := w - 2*pdfCellPad
	r := []rune(s)
	full := len(r)
	// No more runes than the narrowest glyph allows can fit.
	if narrow := pdf.GetStringWidth("'"); narrow > 0 {
		if limit := int(avail/narrow) + 1; len(r) > limit {
			r = r[:limit]
		}
	}
	if len(r) == full {
		if out := tr(s); pdf.GetStringWidth(out) <= avail {
			return out
		}
	}

	fits := func(n int) bool {
		return pdf.GetStringWidth(tr(string(r[:n])+"...")) <= avail
	}
	lo, hi := 0, len(r)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if fits(mid) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo == 0 {
		return ""
	}
	return tr(string(r[:lo]) + "...")
}
