package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/username/etsyexporter/src/models"
)

// Selectors for the rendered orders page. The section label varies in case
// between page variants, and the selection checkbox id prefix is not always
// present, hence the fallbacks.
const (
	orderRowSelector         = `section[aria-label="orders"] .panel-body-row, section[aria-label="Orders"] .panel-body-row`
	checkboxSelector         = `input[id^="order-checkbox-"]`
	checkboxFallbackSelector = `input[name][value]`
	noteIconSelector         = `[data-tooltip^="Private note"]`
	noteSpanSelector         = `.flag-body span[data-test-id="unsanitize"]`
)

// Tax-registration markers as rendered inside <strong> elements. The
// apostrophe may be typographic depending on locale rendering.
var (
	iossPattern  = regexp.MustCompile(`(?i)(Etsy['’]s IOSS number,\s*IM[0-9]+)`)
	ukVATPattern = regexp.MustCompile(`(?i)(Etsy['’]s UK VAT number,\s*[\d ]+)`)
)

// DOMEnricher joins rendered order rows to normalized records by order id
// and fills in the DOM-only fields: the private-note list and the
// tax-registration identifier. Rows without a matching record, and records
// without a matching row, are skipped silently.
type DOMEnricher struct{}

func NewDOMEnricher() *DOMEnricher {
	return &DOMEnricher{}
}

// Enrich runs the two-phase join: phase one accumulates notes and tax ids
// into matched records in row-scan order, phase two projects every record's
// note list onto the fixed slots exactly once.
func (e *DOMEnricher) Enrich(doc *goquery.Document, records []models.NormalizedRecord) []models.NormalizedRecord {
	if doc == nil || len(records) == 0 {
		return records
	}

	index := make(map[string]*models.NormalizedRecord, len(records))
	for i := range records {
		if records[i].OrderID != "" {
			index[records[i].OrderID] = &records[i]
		}
	}

	doc.Find(orderRowSelector).Each(func(_ int, row *goquery.Selection) {
		record, ok := index[rowOrderID(row)]
		if !ok {
			return
		}
		collectPrivateNotes(row, record)
		if vat := extractTaxRegistration(row); vat != "" {
			record.EtsyIossNumber = vat
		}
	})

	for i := range records {
		records[i].ProjectNoteSlots()
	}
	return records
}

// rowOrderID reads the join key from the row's selection checkbox: value
// first, name as fallback. Returns "" when the row carries no usable input.
func rowOrderID(row *goquery.Selection) string {
	chk := row.Find(checkboxSelector).First()
	if chk.Length() == 0 {
		chk = row.Find(checkboxFallbackSelector).First()
	}
	if chk.Length() == 0 {
		return ""
	}
	if v := chk.AttrOr("value", ""); v != "" {
		return v
	}
	return chk.AttrOr("name", "")
}

// collectPrivateNotes appends every note span under every note icon's flag
// container, in document order, trimmed, skipping empties. No dedup: two
// icons with the same text produce two notes.
func collectPrivateNotes(row *goquery.Selection, record *models.NormalizedRecord) {
	row.Find(noteIconSelector).Each(func(_ int, icon *goquery.Selection) {
		flag := icon.Closest(".flag")
		if flag.Length() == 0 {
			return
		}
		flag.Find(noteSpanSelector).Each(func(_ int, span *goquery.Selection) {
			if text := strings.TrimSpace(span.Text()); text != "" {
				record.PrivateNotes = append(record.PrivateNotes, text)
			}
		})
	})
}

// extractTaxRegistration scans the row's <strong> texts and returns the
// first EU IOSS or UK VAT marker match. At most one of the two patterns is
// expected per row; first hit wins.
func extractTaxRegistration(row *goquery.Selection) string {
	var found string
	row.Find("strong").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := strings.TrimSpace(el.Text())
		if m := iossPattern.FindStringSubmatch(text); m != nil {
			found = m[1]
			return false
		}
		if m := ukVATPattern.FindStringSubmatch(text); m != nil {
			found = strings.TrimSpace(m[1])
			return false
		}
		return true
	})
	return found
}
