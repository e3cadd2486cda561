package exporters

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/username/etsyexporter/src/models"
	"github.com/username/etsyexporter/src/security/validation"
)

// CSVExporter renders normalized records as a spreadsheet-compatible
// delimited file: UTF-8 BOM prefix, CRLF row separators, human-readable
// header labels, and an Excel text-coercion wrapper on identifier-like
// values. encoding/csv cannot express this contract (newline collapsing,
// ="…" wrappers, CRLF rows with conditional quoting), so rows are built by
// hand here.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Build(records []models.NormalizedRecord, fields []models.Field) []byte {
	lines := make([]string, 0, len(records)+1)

	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = escapeField(f.Label)
	}
	lines = append(lines, strings.Join(header, ","))

	for _, record := range records {
		row := make([]string, len(fields))
		for i, f := range fields {
			value := validation.StripUnprintable(record.Get(f.Key))
			row[i] = escapeField(excelSafeValue(f.Key, value))
		}
		lines = append(lines, strings.Join(row, ","))
	}

	return []byte("\uFEFF" + strings.Join(lines, "\r\n"))
}

// Filename returns the attachment name for an export produced at t.
func (e *CSVExporter) Filename(t time.Time) string {
	return fmt.Sprintf("etsy-orders-%s.csv", t.UTC().Format("2006-01-02T15-04-05"))
}

var nonDigits = regexp.MustCompile(`\D`)

// excelSafeValue wraps a value as ="value" when the field is one of the
// fixed identifier-like columns, or when its digit-only content reaches 8+
// digits. Spreadsheets otherwise coerce long numbers into scientific
// notation and corrupt them.
func excelSafeValue(fieldKey, value string) string {
	if value == "" {
		return ""
	}
	digits := nonDigits.ReplaceAllString(value, "")
	if models.ExcelTextFields[fieldKey] || len(digits) >= 8 {
		return `="` + value + `"`
	}
	return value
}

// escapeField collapses embedded newlines to spaces, then quote-wraps and
// doubles quotes when the value contains a comma or a quote.
func escapeField(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.ContainsAny(s, `",`) {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
