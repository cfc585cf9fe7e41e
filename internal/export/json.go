// =============================================================================
// Slip Report - JSON Exporter
// =============================================================================
//
// The JSON export is the full Document, indented.
//
// =============================================================================

package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes the whole document as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
