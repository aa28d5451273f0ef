// Package core provides the data and transform logic for the sheet editor.
//
// This package is the heart of the editor, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// the command line converter, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Workbook: an ordered list of named sheets, each a [RowMatrix] whose
//     row 0 is the header.
//   - Inference: [InferColumnTypes] assigns string, number, or date to each
//     column; the first decisive cell wins.
//   - Validation: [IsValid] and [Coerce] gate cell edits against a column type.
//   - Filtering: [ApplyFilters] and [ApplyGlobalFilters] project a workbook
//     through column filters and a global search, always keeping the header.
//   - Export shaping: [MatrixShape], [TableShapes], and [RecordShape] build the
//     structures the encoders in package codec consume.
//   - Session: one loaded workbook with its active sheet, filters, and types,
//     kept by a [SessionStore] and driven through [Service].
//
// # Working Dataset
//
// A session stores only the original workbook and the filter state. The
// working dataset is derived on every read via [Project], and each
// [FilteredSheet] records the original row behind each filtered row so edits
// made on a filtered view land on the right original row.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL001-VAL005: Validation errors (invalid value, header edit, bounds)
//   - FILE001-FILE005: File errors (size, format, empty, unreadable)
//   - SES001-SES005: Session errors (expired, capacity, busy)
//   - FLT001: Filter expression errors
//   - REQ001-REQ002: Request cancellation and timeouts
//
// Use [FormatUserError] to get a display-ready string with code and action.
package core
