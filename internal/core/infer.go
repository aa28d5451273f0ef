package core

// infer.go classifies each column of a sheet as string, number, or date.
//
// The classifier is first-decisive-cell-wins: for each column the data rows
// are scanned top to bottom and the first numeric cell (number) or
// date-parseable cell (date) fixes the type. There is no majority vote and
// no sampling threshold. Consumers rely on one deterministic type per column
// for as long as a sheet stays active, so the result is recomputed only on
// sheet switch, never patched incrementally.

// InferColumnTypes returns one type per header column of m, scanning the data
// rows (row 0 is the header and is skipped). A matrix with no data rows
// yields an empty vector; a column empty in every row is TypeString.
func InferColumnTypes(m RowMatrix) ColumnTypes {
	if m.DataLen() == 0 {
		return ColumnTypes{}
	}
	return inferRows(m.DataRows(), m.Width())
}

// InferRowTypes classifies data-only rows, i.e. rows that carry no header.
// The vector has width entries.
func InferRowTypes(rows []Row, width int) ColumnTypes {
	if len(rows) == 0 {
		return ColumnTypes{}
	}
	return inferRows(rows, width)
}

func inferRows(rows []Row, width int) ColumnTypes {
	types := make(ColumnTypes, width)
	for col := 0; col < width; col++ {
		types[col] = inferColumn(rows, col)
	}
	return types
}

func inferColumn(rows []Row, col int) ColumnType {
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		cell := row[col]
		if cell.IsEmpty() {
			continue
		}
		if isNumeric(cell) {
			return TypeNumber
		}
		if IsDate(cell.String()) {
			return TypeDate
		}
	}
	return TypeString
}

// isNumeric treats numeric text the same as a native number, so a column
// decoded from a typeless source classifies like one decoded from xlsx.
func isNumeric(c Cell) bool {
	if c.IsNumber() {
		return true
	}
	_, ok := ParseNumber(c.String())
	return ok
}
