package parsers

import (
	"encoding/json"

	"github.com/username/etsyexporter/src/models"
)

// ContextLocator finds the embedded orders container for one marketplace
// page variant. Implementations take the optional live state blob (the page
// state posted directly by the caller) plus the page script texts in
// document order, and must never fail past their boundary: absence is the
// bool result, parse trouble inside a single script block is logged and
// skipped.
type ContextLocator interface {
	Locate(liveState json.RawMessage, scripts []string) (*models.OrdersSearch, bool)
}
