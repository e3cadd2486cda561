package services

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/username/etsyexporter/src/models"
)

var (
	// ErrNoOrderData is the aggregate "zero records produced" outcome:
	// neither the live state blob nor the script scan yielded orders. The
	// caller presents this as a user-facing "no data found", not a crash.
	ErrNoOrderData = errors.New("no order data found in page")

	ErrParsingFailed    = errors.New("failed to parse uploaded page")
	ErrRunNotFound      = errors.New("extraction run not found")
	ErrTemplateNotFound = errors.New("export template not found")
	ErrNoFieldsSelected = errors.New("no known export fields selected")
)

// ExtractionResult is what one upload produces: the stored run summary and
// the full normalized, enriched record set.
type ExtractionResult struct {
	Run     models.ExtractionRun      `json:"run"`
	Records []models.NormalizedRecord `json:"records"`
}

// ExportRequest selects what to export: a run, an optional subset of its
// order ids, and either an explicit ordered field-key list or a named
// template (empty means the default template).
type ExportRequest struct {
	RunID     string   `json:"run_id" validate:"required,uuid4"`
	OrderIDs  []string `json:"order_ids" validate:"omitempty,dive,required"`
	FieldKeys []string `json:"field_keys" validate:"omitempty,min=1,dive,required"`
	Template  string   `json:"template"`
}

// ExportService is the core pipeline boundary: extraction on one side, CSV
// export and template persistence on the other.
type ExportService interface {
	ExtractFromPage(pageReader io.Reader, liveState json.RawMessage, sourceName string) (*ExtractionResult, error)
	ListRuns(limit int) ([]models.ExtractionRun, error)
	GetRunRecords(runID string) ([]models.NormalizedRecord, error)
	ExportCSV(req ExportRequest) (data []byte, filename string, err error)
	GetTemplate(name string) (*models.ExportTemplate, error)
	SaveTemplate(tpl models.ExportTemplate) error
}
