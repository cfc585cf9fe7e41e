// =============================================================================
// Slip Report - Text Collation
// =============================================================================
//
// Locale-aware string comparison shared by the report ordering and the sort
// engine.
//
// =============================================================================

package report

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NewTextComparer returns a locale-aware string comparison for display text.
// Pass collate.Numeric to order digit runs by value ("9" before "10").
// The returned function is not safe for concurrent use; create one per sort.
func NewTextComparer(opts ...collate.Option) func(a, b string) int {
	c := collate.New(language.English, opts...)
	return c.CompareString
}
