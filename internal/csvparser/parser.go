// =============================================================================
// Slip Report - CSV Tokenizer Module
// =============================================================================
//
// This module turns the raw text of a slip export into lines and each line
// into fields. The exports come from a field-collection app that wraps most
// values in double quotes and uses commas inside quoted values (ward names,
// amounts such as "1,250.00").
//
// QUOTING RULES:
//   - A double quote toggles the "inside quoted field" state.
//   - A comma separates fields only when not inside a quoted field.
//   - Every other character, including a comma while quoted, is kept.
//   - There is no escaped/doubled quote: `""` toggles twice and adds nothing.
//   - The trailing field is always emitted, even when empty.
//
// The rules above are intentionally looser than RFC 4180, so encoding/csv
// is not used here: it rejects or rewrites the stray quotes these exports
// contain instead of toggling on them.
//
// =============================================================================

package csvparser

import (
	"errors"
	"strings"
)

// ErrEmptyInput is returned when the text has no header line.
var ErrEmptyInput = errors.New("input has no header line")

// byteOrderMark is stripped from header labels (Excel adds it to UTF-8 exports).
const byteOrderMark = "\uFEFF"

// =============================================================================
// DOCUMENT STRUCTURE
// =============================================================================

// Line is one data line of the input together with its position.
type Line struct {
	// Number is the 1-based line number in the original text.
	// The header is line 1, so the first data line is line 2.
	Number int

	// Text is the raw line as split from the input, untrimmed.
	Text string
}

// Document is the tokenized shape of one input blob.
type Document struct {
	// Headers contains the cleaned header labels.
	Headers []string

	// Lines contains every line after the header, including blank ones.
	// Blank and short lines are dropped later by the normalizer.
	Lines []Line
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse splits raw text into a header row and data lines.
//
// PARAMETERS:
//   - text: The whole input blob.
//
// RETURNS:
//   - A pointer to the Document with cleaned headers.
//   - ErrEmptyInput if the first line holds no content.
func Parse(text string) (*Document, error) {
	lines := SplitLines(text)
	if len(lines) == 0 || strings.TrimSpace(strings.ReplaceAll(lines[0], byteOrderMark, "")) == "" {
		return nil, ErrEmptyInput
	}

	doc := &Document{
		Headers: CleanHeaders(ParseLine(lines[0])),
		Lines:   make([]Line, 0, len(lines)-1),
	}

	for i := 1; i < len(lines); i++ {
		doc.Lines = append(doc.Lines, Line{Number: i + 1, Text: lines[i]})
	}

	return doc, nil
}

// SplitLines splits text on line feeds. Carriage returns are left in place
// and disappear when the caller trims the line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// ParseLine splits a single line into fields using the quote-toggle rules
// described at the top of this file.
func ParseLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	// The trailing field is emitted even without a terminating separator.
	fields = append(fields, current.String())
	return fields
}

// CleanHeaders normalizes header labels.
//
// CLEANING OPERATIONS:
//   - Remove every double quote
//   - Remove every byte-order mark
//   - Trim whitespace
//
// Unlike data fields, empty headers are kept empty; they simply never match
// a logical column.
func CleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		cleaned[i] = CleanHeader(header)
	}

	return cleaned
}

// CleanHeader normalizes a single header label.
func CleanHeader(header string) string {
	header = strings.ReplaceAll(header, `"`, "")
	header = strings.ReplaceAll(header, byteOrderMark, "")
	return strings.TrimSpace(header)
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// IsBlank reports whether a line is empty after trimming.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// StripQuotes removes every double quote from a field value.
func StripQuotes(field string) string {
	return strings.ReplaceAll(field, `"`, "")
}
