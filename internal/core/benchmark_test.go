package core

import (
	"fmt"
	"strconv"
	"testing"
)

// ============================================================================
// Conversion Benchmarks
// ============================================================================

// BenchmarkParseNumber covers the numeric check run for every cell during
// inference and every number-column edit.
func BenchmarkParseNumber(b *testing.B) {
	testCases := []string{
		"123",
		"-456.78",
		"  999.99  ",
		"1e6",
		"$1,234.56", // rejected
		"abc",       // rejected
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseNumber(tc)
		}
	}
}

// BenchmarkParseDate benchmarks date parsing across the layout list.
// Late-matching and non-date inputs walk every layout.
func BenchmarkParseDate(b *testing.B) {
	testCases := []string{
		"2024-01-15",   // ISO, first match
		"01/15/2024",   // US format
		"Jan 15, 2024", // text month
		"1/5/24",       // 2-digit year, last group
		"not a date",   // tries every layout
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseDate(tc)
		}
	}
}

// ============================================================================
// Inference and Filter Benchmarks
// ============================================================================

// benchWorkbook builds one sheet with a string, number, and date column.
func benchWorkbook(rows int) Workbook {
	data := make([]Row, 0, rows+1)
	data = append(data, StringsRow("Customer", "Amount", "Date", "Region"))
	regions := []string{"north", "south", "east", "west"}
	for i := 0; i < rows; i++ {
		data = append(data, Row{
			StringCell(fmt.Sprintf("Customer %d", i)),
			NumberCell(float64(i) * 1.5),
			StringCell(fmt.Sprintf("2024-%02d-%02d", i%12+1, i%28+1)),
			StringCell(regions[i%len(regions)]),
		})
	}
	return Workbook{{Name: "Bench", Rows: MustRowMatrix(data...)}}
}

// BenchmarkInferColumnTypes measures inference when the first empty-free
// row decides every column, the common case.
func BenchmarkInferColumnTypes(b *testing.B) {
	m := benchWorkbook(10000)[0].Rows

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		InferColumnTypes(m)
	}
}

// BenchmarkApplyFilters runs a per-column filter over sheets of growing size.
func BenchmarkApplyFilters(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		wb := benchWorkbook(size)
		b.Run(strconv.Itoa(size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				ApplyFilters(wb, []string{"", "", "", "west"}, "")
			}
		})
	}
}

// BenchmarkApplyGlobalFilters runs an any-column filter with a global search.
func BenchmarkApplyGlobalFilters(b *testing.B) {
	wb := benchWorkbook(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ApplyGlobalFilters(wb, []string{"e", "2024"}, "customer")
	}
}

// BenchmarkProject_Expression measures the expression path, which binds
// header names per row.
func BenchmarkProject_Expression(b *testing.B) {
	wb := benchWorkbook(10000)
	state := FilterState{Columns: make([]string, 4), Expression: "[Amount] > 5000"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Project(wb, state); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Export Benchmarks
// ============================================================================

// BenchmarkToRecords measures record shaping for JSON export.
func BenchmarkToRecords(b *testing.B) {
	m := benchWorkbook(10000)[0].Rows

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ToRecords(m)
	}
}
