// =============================================================================
// Slip Report - Expected Ward Set
// =============================================================================
//
// The expected ward set is the universe used for coverage reporting. It never
// filters aggregation; it only decides which wards are reported as missing and
// which as unlisted.
//
// =============================================================================

package report

import "strconv"

// DefaultWardCount is the size of the default expected ward universe ("1".."70").
const DefaultWardCount = 70

// WardSet is the fixed, ordered universe of expected ward identifiers. It
// is only used for coverage reporting and never filters aggregation.
type WardSet struct {
	ids   []string
	index map[string]struct{}
}

// NewWardRange returns the identifiers first..last as decimal strings.
func NewWardRange(first, last int) WardSet {
	ids := make([]string, 0, max(last-first+1, 0))
	for i := first; i <= last; i++ {
		ids = append(ids, strconv.Itoa(i))
	}
	return NewWardSet(ids)
}

// NewWardSet returns a set over explicit identifiers, keeping their order
// and dropping duplicates.
func NewWardSet(ids []string) WardSet {
	ws := WardSet{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if _, dup := ws.index[id]; dup {
			continue
		}
		ws.index[id] = struct{}{}
		ws.ids = append(ws.ids, id)
	}
	return ws
}

// DefaultWardSet returns wards "1" through "70".
func DefaultWardSet() WardSet {
	return NewWardRange(1, DefaultWardCount)
}

// IDs returns the identifiers in their natural order.
func (ws WardSet) IDs() []string {
	return ws.ids
}

// Contains reports whether id is an expected ward.
func (ws WardSet) Contains(id string) bool {
	_, ok := ws.index[id]
	return ok
}

// Len returns the number of expected wards.
func (ws WardSet) Len() int {
	return len(ws.ids)
}
