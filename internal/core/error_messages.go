// Package core provides the extraction pipeline: value normalization, row
// classification and record assembly.
//
// # Error Codes Reference
//
// This file maps technical errors to user-facing messages with codes that
// operators can quote when reporting problems.
//
// # Extraction Errors (EXT001-EXT099)
//
//	EXT001 - Extraction failed: The table source could not be read
//	         Action: Check that the file is a readable PDF, XLSX or CSV
//	         Matches: ErrExtraction
//
//	EXT002 - Unsupported format: The file type is not supported
//	         Action: Upload a PDF, XLSX or CSV file
//	         Matches: ErrUnsupportedFormat
//
//	EXT003 - No pages: The requested pages do not exist in the document
//	         Action: Check the page selection against the document length
//	         Matches: ErrPageRange, Patterns: "page out of range"
//
// # Layout Errors (LAY001-LAY099)
//
//	LAY001 - Unknown layout: No layout is registered under this key
//	         Action: List layouts with GET /api/layouts
//	         Matches: ErrUnknownLayout
//
//	LAY002 - Invalid layout: The layout definition is inconsistent
//	         Action: Fix the layout file; the log lists every problem
//	         Matches: ErrInvalidLayout
//
// # Output Errors (SNK001-SNK099)
//
//	SNK001 - Write failed: The result could not be written
//	         Action: Check the output destination and retry
//	         Matches: ErrSink
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Busy: Too many extractions in progress
//	         Action: Please wait a moment and try again
//	         Matches: ErrTooManyRuns
//
//	RUN002 - Cancelled: The request was cancelled
//	         Matches: context.Canceled
//
//	RUN003 - Timed out: The extraction took too long
//	         Matches: context.DeadlineExceeded
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large, FILE002 - No file, FILE003 - Empty file
//	          Patterns: "file too large", "no file provided", "empty file"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid parameters: A page selection or table area did not parse
//	         Patterns: "bad request"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSink marks a failure writing a result to an output.
	ErrSink = errors.New("output write failed")

	// ErrUnsupportedFormat is returned for inputs no region source can read.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrPageRange is returned when a page selection names pages the
	// document does not have.
	ErrPageRange = errors.New("page out of range")
)

// UserMessage is a user-facing explanation of an error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

type sentinelMessage struct {
	target error
	msg    UserMessage
}

// sentinelMessages are checked with errors.Is, most specific first.
// ErrPageRange must precede ErrExtraction, which wraps it on the Run path.
var sentinelMessages = []sentinelMessage{
	{ErrPageRange, UserMessage{"The requested pages do not exist", "Check the page selection against the document length", "EXT003"}},
	{ErrUnsupportedFormat, UserMessage{"Unsupported file format", "Upload a PDF, XLSX or CSV file", "EXT002"}},
	{ErrExtraction, UserMessage{"The table source could not be read", "Check that the file is a readable PDF, XLSX or CSV", "EXT001"}},
	{ErrUnknownLayout, UserMessage{"Unknown document layout", "List available layouts with GET /api/layouts", "LAY001"}},
	{ErrInvalidLayout, UserMessage{"The layout definition is invalid", "Fix the layout file; the log lists every problem", "LAY002"}},
	{ErrSink, UserMessage{"The result could not be written", "Check the output destination and retry", "SNK001"}},
	{ErrTooManyRuns, UserMessage{"Too many extractions in progress", "Please wait a moment and try again", "RUN001"}},
	{context.Canceled, UserMessage{"Request was cancelled", "Please try again", "RUN002"}},
	{context.DeadlineExceeded, UserMessage{"The extraction took too long", "Try a smaller page range", "RUN003"}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catch errors raised outside this package that carry no
// sentinel. Matching is case-insensitive; first match wins.
var errorPatterns = []errorPattern{
	{"page out of range", UserMessage{"The requested pages do not exist", "Check the page selection against the document length", "EXT003"}},
	{"file too large", UserMessage{"File exceeds the maximum size", "Extract a smaller page range or split the document", "FILE001"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a file to extract", "FILE002"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Please upload a document with tables", "FILE003"}},
	{"bad request", UserMessage{"The request parameters are invalid", "Check the page selection and table area", "REQ001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message.
// Sentinels win over text patterns; unknown errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
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

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	if msg.Action == "" {
		return fmt.Sprintf("%s (Code: %s)", msg.Message, msg.Code)
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
