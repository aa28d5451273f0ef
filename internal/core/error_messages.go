package core

// # Error Codes Reference
//
// User-facing messages with codes for support reference. Codes are grouped
// by category:
//
//	VAL001 - Invalid cell value for the column's type (message names the type)
//	VAL002 - Header row edit attempted
//	VAL003 - Row does not exist in the current view
//	VAL004 - Column does not exist in the sheet
//	VAL005 - Row wider than its header
//
//	FILE001 - File too large
//	FILE002 - Unsupported file or export format
//	FILE003 - Empty file
//	FILE004 - No file selected
//	FILE005 - File could not be read as a workbook
//
//	SES001 - Workbook session not found or expired
//	SES002 - Too many open workbooks
//	SES003 - No workbook loaded
//	SES004 - Sheet does not exist
//	SES005 - System busy loading other workbooks
//
//	FLT001 - Filter expression does not compile
//
//	REQ001 - Request cancelled
//	REQ002 - Request timed out
//	REQ003 - Malformed request parameters
//
//	RATE001 - Too many requests
//
//	ERR000 - Unknown error; check the server log for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Validation
	{"header row cannot be edited", UserMessage{"The header row cannot be edited", "Edit a data row instead", "VAL002"}},
	{"row index out of range", UserMessage{"That row is not in the current view", "Reload the sheet and try again", "VAL003"}},
	{"column index out of range", UserMessage{"That column does not exist", "Reload the sheet and try again", "VAL004"}},
	{"row wider than header", UserMessage{"A row has more cells than the header", "Add header labels for every column", "VAL005"}},

	// Files
	{"file too large", UserMessage{"File exceeds the maximum size limit", "Split the workbook into smaller files", "FILE001"}},
	{"request body too large", UserMessage{"File exceeds the maximum size limit", "Split the workbook into smaller files", "FILE001"}},
	{"unsupported format", UserMessage{"This file or export format is not supported", "Use .xlsx or .csv files; export as xlsx, json, or pdf", "FILE002"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Upload a workbook with a header row", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a workbook to upload", "FILE004"}},
	{"not a valid zip file", UserMessage{"The file could not be read as a workbook", "Re-save the file as .xlsx and try again", "FILE005"}},
	{"decode", UserMessage{"The file could not be read as a workbook", "Re-save the file as .xlsx and try again", "FILE005"}},

	// Sessions
	{"session not found", UserMessage{"This workbook is no longer open", "Upload the file again", "SES001"}},
	{"too many open workbooks", UserMessage{"Too many workbooks are open", "Close a workbook or try again later", "SES002"}},
	{"no workbook loaded", UserMessage{"No workbook is loaded", "Upload a workbook first", "SES003"}},
	{"sheet index out of range", UserMessage{"That sheet does not exist", "Choose one of the listed sheets", "SES004"}},
	{"too many workbooks loading", UserMessage{"The system is busy loading other workbooks", "Please wait a moment and try again", "SES005"}},

	// Filters
	{"invalid filter expression", UserMessage{"The filter expression is not valid", "Check column names in [brackets] and operators", "FLT001"}},

	// Requests
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "REQ001"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller file or try again later", "REQ002"}},
	{"malformed request", UserMessage{"The request could not be understood", "Reload the page and try again", "REQ003"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Invalid cell values name the expected type; other errors are matched
// against the pattern table, falling back to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var iv *InvalidValueError
	if errors.As(err, &iv) {
		return UserMessage{
			Message: fmt.Sprintf("Invalid input! Expected a value of type %s.", iv.Type),
			Action:  "Enter a " + string(iv.Type) + " value or leave the cell unchanged",
			Code:    "VAL001",
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
