package processors

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/username/etsyexporter/src/models"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture HTML: %v", err)
	}
	return doc
}

func noteFlag(tooltip, text string) string {
	return `<div class="flag">` +
		`<span data-tooltip="` + tooltip + `"></span>` +
		`<div class="flag-body"><span data-test-id="unsanitize">` + text + `</span></div>` +
		`</div>`
}

func TestEnrichNotesInDocumentOrder(t *testing.T) {
	html := `<html><body><section aria-label="orders">
		<div class="panel-body-row">
			<input id="order-checkbox-101" name="101" value="101" type="checkbox">
			` + noteFlag("Private note", "Fragile") + noteFlag("Private notes", "Gift wrap") + `
		</div>
	</section></body></html>`

	records := []models.NormalizedRecord{{OrderID: "101"}}
	records = NewDOMEnricher().Enrich(mustDoc(t, html), records)

	rec := records[0]
	if len(rec.PrivateNotes) != 2 || rec.PrivateNotes[0] != "Fragile" || rec.PrivateNotes[1] != "Gift wrap" {
		t.Fatalf("private notes = %v, want [Fragile, Gift wrap]", rec.PrivateNotes)
	}
	if rec.PrivateNote1 != "Fragile" || rec.PrivateNote2 != "Gift wrap" || rec.PrivateNote3 != "" {
		t.Errorf("note slots = %q %q %q, want Fragile, Gift wrap, empty",
			rec.PrivateNote1, rec.PrivateNote2, rec.PrivateNote3)
	}
}

func TestEnrichNoteOverflowDropsBeyondSlotFive(t *testing.T) {
	var flags string
	for _, text := range []string{"n1", "n2", "n3", "n4", "n5", "n6", "n7"} {
		flags += noteFlag("Private note", text)
	}
	html := `<html><body><section aria-label="orders">
		<div class="panel-body-row">
			<input id="order-checkbox-7" value="7">` + flags + `
		</div>
	</section></body></html>`

	records := NewDOMEnricher().Enrich(mustDoc(t, html), []models.NormalizedRecord{{OrderID: "7"}})
	rec := records[0]

	if len(rec.PrivateNotes) != 7 {
		t.Fatalf("raw note list length = %d, want 7", len(rec.PrivateNotes))
	}
	if rec.PrivateNote5 != "n5" {
		t.Errorf("slot 5 = %q, want n5", rec.PrivateNote5)
	}
}

func TestEnrichRowWithoutMatchingRecordIsSkipped(t *testing.T) {
	html := `<html><body><section aria-label="Orders">
		<div class="panel-body-row">
			<input id="order-checkbox-404" value="404">` + noteFlag("Private note", "orphan") + `
		</div>
	</section></body></html>`

	records := NewDOMEnricher().Enrich(mustDoc(t, html), []models.NormalizedRecord{{OrderID: "1"}})
	rec := records[0]

	if len(rec.PrivateNotes) != 0 || rec.PrivateNote1 != "" {
		t.Errorf("record without matching row changed: notes=%v slot1=%q", rec.PrivateNotes, rec.PrivateNote1)
	}
}

func TestEnrichCheckboxFallbackSelector(t *testing.T) {
	// No id-prefixed checkbox; any input carrying both name and value works.
	html := `<html><body><section aria-label="Orders">
		<div class="panel-body-row">
			<input name="202" value="202" type="checkbox">` + noteFlag("Private note", "via fallback") + `
		</div>
	</section></body></html>`

	records := NewDOMEnricher().Enrich(mustDoc(t, html), []models.NormalizedRecord{{OrderID: "202"}})
	if records[0].PrivateNote1 != "via fallback" {
		t.Errorf("fallback checkbox join failed, slot1 = %q", records[0].PrivateNote1)
	}
}

func TestEnrichTaxRegistration(t *testing.T) {
	tests := []struct {
		name   string
		strong string
		want   string
	}{
		{
			"EU IOSS",
			"<strong>Use Etsy's IOSS number, IM1234567 on the label</strong>",
			"Etsy's IOSS number, IM1234567",
		},
		{
			"UK VAT",
			"<strong>Include Etsy's UK VAT number, 370 6004 28</strong>",
			"Etsy's UK VAT number, 370 6004 28",
		},
		{
			"no marker",
			"<strong>Ship by Friday</strong>",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<html><body><section aria-label="orders">
				<div class="panel-body-row">
					<input id="order-checkbox-9" value="9">` + tt.strong + `
				</div>
			</section></body></html>`

			records := NewDOMEnricher().Enrich(mustDoc(t, html), []models.NormalizedRecord{{OrderID: "9"}})
			if got := records[0].EtsyIossNumber; got != tt.want {
				t.Errorf("etsy_ioss_number = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnrichProjectsSlotsForAllRecords(t *testing.T) {
	// A record with a pre-seeded working list but no DOM row still gets its
	// slots projected.
	records := []models.NormalizedRecord{{OrderID: "5", PrivateNotes: []string{"kept"}}}
	records = NewDOMEnricher().Enrich(mustDoc(t, "<html><body></body></html>"), records)
	if records[0].PrivateNote1 != "kept" {
		t.Errorf("slot projection skipped for unmatched record, slot1 = %q", records[0].PrivateNote1)
	}
}

func TestEnrichEmptyNoteSpansSkipped(t *testing.T) {
	html := `<html><body><section aria-label="orders">
		<div class="panel-body-row">
			<input id="order-checkbox-3" value="3">
			<div class="flag">
				<span data-tooltip="Private note"></span>
				<div class="flag-body">
					<span data-test-id="unsanitize">   </span>
					<span data-test-id="unsanitize">real note</span>
				</div>
			</div>
		</div>
	</section></body></html>`

	records := NewDOMEnricher().Enrich(mustDoc(t, html), []models.NormalizedRecord{{OrderID: "3"}})
	rec := records[0]
	if len(rec.PrivateNotes) != 1 || rec.PrivateNote1 != "real note" {
		t.Errorf("whitespace-only span should be skipped, notes=%v", rec.PrivateNotes)
	}
}
