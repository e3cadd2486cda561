package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/etsyexporter/src/config"
	"github.com/username/etsyexporter/src/logger"
	"github.com/username/etsyexporter/src/security/validation"
	"github.com/username/etsyexporter/src/services"
	"github.com/username/etsyexporter/src/utils"
)

type ExtractHandler struct {
	exportService services.ExportService
}

func NewExtractHandler(service services.ExportService) *ExtractHandler {
	return &ExtractHandler{
		exportService: service,
	}
}

// HandleExtract accepts a saved orders page as multipart field "file", plus
// an optional "context" form value carrying the raw page state JSON (the
// live-binding path). It runs the extraction pipeline and returns the
// stored run with its records.
func (h *ExtractHandler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		logger.L.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	liveState := json.RawMessage(r.FormValue("context"))

	logger.L.Info("Processing extraction request", "filename", fileHeader.Filename, "hasLiveState", len(liveState) > 0)
	result, err := h.exportService.ExtractFromPage(file, liveState, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoOrderData):
			utils.SendJSONError(w, "No order data found. Make sure the page is a saved Etsy orders list.", http.StatusUnprocessableEntity)
		case errors.Is(err, services.ErrParsingFailed):
			utils.SendJSONError(w, fmt.Sprintf("Error parsing uploaded page: %v", err), http.StatusBadRequest)
		default:
			logger.L.Error("Internal error processing extraction", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the page. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}

func (h *ExtractHandler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.exportService.ListRuns(limit)
	if err != nil {
		logger.L.Error("Error listing extraction runs", "error", err)
		utils.SendJSONError(w, "Error retrieving extraction runs", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, runs, http.StatusOK)
}

func (h *ExtractHandler) HandleGetRunRecords(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")

	records, err := h.exportService.GetRunRecords(runID)
	if err != nil {
		if errors.Is(err, services.ErrRunNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("extraction run %s not found", runID), http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving run records", "runID", runID, "error", err)
		utils.SendJSONError(w, "Error retrieving run records", http.StatusInternalServerError)
		return
	}

	etag, err := utils.GenerateETag(records)
	if err == nil {
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	utils.SendJSON(w, records, http.StatusOK)
}
