// =============================================================================
// Slip Report - Amount Parsing
// =============================================================================
//
// Amounts are free-form text. Every character that is not a digit or a
// decimal point is discarded before parsing, so currency symbols and
// thousands separators are ignored. Anything unparsable is zero.
//
// =============================================================================

package record

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a free-form amount field into a non-negative decimal.
//
// Every character that is not a digit or a decimal point is discarded first,
// so currency symbols, thousands separators and stray text disappear:
// "₹1,250.50" becomes 1250.50. Anything after a second decimal point is
// ignored. An empty or fully non-numeric field parses to zero.
func ParseAmount(raw string) decimal.Decimal {
	var b strings.Builder
	seenPoint := false

	for _, ch := range raw {
		switch {
		case ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch == '.':
			if seenPoint {
				// 1.2.3 reads as 1.2
				return parseCleaned(b.String())
			}
			seenPoint = true
			b.WriteRune(ch)
		}
	}

	return parseCleaned(b.String())
}

func parseCleaned(s string) decimal.Decimal {
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return decimal.Zero
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
