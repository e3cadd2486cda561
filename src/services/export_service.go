package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/etsyexporter/src/database"
	"github.com/username/etsyexporter/src/exporters"
	"github.com/username/etsyexporter/src/logger"
	"github.com/username/etsyexporter/src/models"
	"github.com/username/etsyexporter/src/parsers"
	"github.com/username/etsyexporter/src/processors"
)

const (
	ckRunRecords = "run_records_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type exportServiceImpl struct {
	locator     parsers.ContextLocator
	normalizer  processors.Normalizer
	enricher    processors.Enricher
	csvExporter *exporters.CSVExporter
	resultCache *cache.Cache
}

func NewExportService(
	locator parsers.ContextLocator,
	normalizer processors.Normalizer,
	enricher processors.Enricher,
	csvExporter *exporters.CSVExporter,
	resultCache *cache.Cache,
) ExportService {
	return &exportServiceImpl{
		locator:     locator,
		normalizer:  normalizer,
		enricher:    enricher,
		csvExporter: csvExporter,
		resultCache: resultCache,
	}
}

// ExtractFromPage runs the whole pipeline on one uploaded page: parse the
// document, locate the embedded orders container, normalize, enrich from
// the rendered rows, persist the run. The three stages run sequentially
// within this call; the record slice is not shared with anything until the
// enricher has returned.
func (s *exportServiceImpl) ExtractFromPage(pageReader io.Reader, liveState json.RawMessage, sourceName string) (*ExtractionResult, error) {
	startTime := time.Now()
	logger.L.Info("ExtractFromPage START", "source", sourceName)

	doc, err := goquery.NewDocumentFromReader(pageReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	search, ok := s.locator.Locate(liveState, parsers.CollectScripts(doc))
	if !ok {
		logger.L.Warn("No orders container found in page", "source", sourceName)
		return nil, ErrNoOrderData
	}

	records := s.normalizer.NormalizeAll(search)
	if len(records) == 0 {
		logger.L.Warn("Orders container present but empty", "source", sourceName)
		return nil, ErrNoOrderData
	}
	records = s.enricher.Enrich(doc, records)

	run := models.ExtractionRun{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		SourceName: sourceName,
		OrderCount: len(records),
	}
	if err := storeRun(run, records); err != nil {
		return nil, err
	}
	s.resultCache.Set(fmt.Sprintf(ckRunRecords, run.ID), records, cache.DefaultExpiration)

	logger.L.Info("ExtractFromPage END", "runID", run.ID, "orders", len(records), "duration", time.Since(startTime))
	return &ExtractionResult{Run: run, Records: records}, nil
}

func storeRun(run models.ExtractionRun, records []models.NormalizedRecord) error {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.Exec(
		`INSERT INTO extraction_runs (id, created_at, source_name, order_count) VALUES (?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.SourceName, run.OrderCount)
	if err != nil {
		return fmt.Errorf("error inserting extraction run: %w", err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO extracted_records (run_id, order_id, position, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing record insert statement: %w", err)
	}
	defer stmt.Close()

	for i, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("error marshaling record (OrderID: %s): %w", record.OrderID, err)
		}
		if _, err := stmt.Exec(run.ID, record.OrderID, i, string(payload)); err != nil {
			return fmt.Errorf("error inserting record (OrderID: %s): %w", record.OrderID, err)
		}
	}

	return dbTx.Commit()
}

func (s *exportServiceImpl) ListRuns(limit int) ([]models.ExtractionRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := database.DB.Query(
		`SELECT id, created_at, source_name, order_count FROM extraction_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying extraction runs: %w", err)
	}
	defer rows.Close()

	runs := []models.ExtractionRun{}
	for rows.Next() {
		var run models.ExtractionRun
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.SourceName, &run.OrderCount); err != nil {
			return nil, fmt.Errorf("error scanning extraction run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *exportServiceImpl) GetRunRecords(runID string) ([]models.NormalizedRecord, error) {
	cacheKey := fmt.Sprintf(ckRunRecords, runID)
	if cached, found := s.resultCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for run records", "runID", runID)
		return cached.([]models.NormalizedRecord), nil
	}

	var exists int
	err := database.DB.QueryRow(`SELECT COUNT(1) FROM extraction_runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("error checking extraction run: %w", err)
	}
	if exists == 0 {
		return nil, ErrRunNotFound
	}

	rows, err := database.DB.Query(
		`SELECT payload FROM extracted_records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("error querying run records: %w", err)
	}
	defer rows.Close()

	records := []models.NormalizedRecord{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("error scanning record payload: %w", err)
		}
		var record models.NormalizedRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("error unmarshaling record payload: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.resultCache.Set(cacheKey, records, cache.DefaultExpiration)
	return records, nil
}

// ExportCSV renders the selected subset of a run's records and columns.
// Field precedence: explicit field_keys, else the named template, else the
// default template.
func (s *exportServiceImpl) ExportCSV(req ExportRequest) ([]byte, string, error) {
	records, err := s.GetRunRecords(req.RunID)
	if err != nil {
		return nil, "", err
	}

	if len(req.OrderIDs) > 0 {
		selected := make(map[string]bool, len(req.OrderIDs))
		for _, id := range req.OrderIDs {
			selected[id] = true
		}
		filtered := make([]models.NormalizedRecord, 0, len(records))
		for _, record := range records {
			if selected[record.OrderID] {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	keys := req.FieldKeys
	if len(keys) == 0 {
		templateName := req.Template
		if templateName == "" {
			templateName = "default"
		}
		tpl, err := s.GetTemplate(templateName)
		if err != nil {
			return nil, "", err
		}
		keys = tpl.FieldKeys
	}

	fields := models.ResolveFields(keys)
	if len(fields) == 0 {
		return nil, "", ErrNoFieldsSelected
	}

	logger.L.Info("Exporting CSV", "runID", req.RunID, "records", len(records), "fields", len(fields))
	return s.csvExporter.Build(records, fields), s.csvExporter.Filename(time.Now()), nil
}

func (s *exportServiceImpl) GetTemplate(name string) (*models.ExportTemplate, error) {
	var keysJSON string
	err := database.DB.QueryRow(`SELECT field_keys FROM export_templates WHERE name = ?`, name).Scan(&keysJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying export template: %w", err)
	}

	var keys []string
	if err := json.Unmarshal([]byte(keysJSON), &keys); err != nil {
		return nil, fmt.Errorf("error unmarshaling template field keys: %w", err)
	}
	return &models.ExportTemplate{Name: name, FieldKeys: keys}, nil
}

func (s *exportServiceImpl) SaveTemplate(tpl models.ExportTemplate) error {
	if len(models.ResolveFields(tpl.FieldKeys)) == 0 {
		return ErrNoFieldsSelected
	}
	keysJSON, err := json.Marshal(tpl.FieldKeys)
	if err != nil {
		return fmt.Errorf("error marshaling template field keys: %w", err)
	}
	_, err = database.DB.Exec(
		`INSERT INTO export_templates (name, field_keys, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET field_keys = excluded.field_keys, updated_at = CURRENT_TIMESTAMP`,
		tpl.Name, string(keysJSON))
	if err != nil {
		return fmt.Errorf("error saving export template: %w", err)
	}
	logger.L.Info("Export template saved", "name", tpl.Name, "fields", len(tpl.FieldKeys))
	return nil
}
