package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/SheetEdit/internal/core"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeCSV reads a comma-separated file as a single sheet named after the
// file. Blank fields are empty cells and numeric fields are number cells.
func DecodeCSV(fileName string, data []byte) (core.Workbook, error) {
	return decodeDelimited(fileName, data, ',')
}

// DecodeTSV is DecodeCSV for tab-separated files.
func DecodeTSV(fileName string, data []byte) (core.Workbook, error) {
	return decodeDelimited(fileName, data, '\t')
}

func decodeDelimited(fileName string, data []byte, comma rune) (core.Workbook, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte("�"))
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows []core.Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(core.Row, len(rec))
		for i, field := range rec {
			row[i] = core.ParseCell(field)
		}
		rows = append(rows, row)
	}

	return core.Workbook{{Name: sheetNameFromFile(fileName), Rows: core.NewRowMatrixTrimmed(rows)}}, nil
}

func sheetNameFromFile(fileName string) string {
	base := filepath.Base(fileName)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." {
		return "Sheet1"
	}
	return name
}
