package processors

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/username/etsyexporter/src/models"
)

// Normalizer turns the raw orders container into flat export records.
// Implementations must be pure: no side effects, total over malformed input.
type Normalizer interface {
	NormalizeAll(search *models.OrdersSearch) []models.NormalizedRecord
}

// Enricher augments normalized records with values only present in the
// rendered page (private notes, tax-registration ids). It owns the record
// slice for the duration of the call and runs to completion before records
// reach any other consumer.
type Enricher interface {
	Enrich(doc *goquery.Document, records []models.NormalizedRecord) []models.NormalizedRecord
}
