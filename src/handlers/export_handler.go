package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/username/etsyexporter/src/logger"
	"github.com/username/etsyexporter/src/models"
	"github.com/username/etsyexporter/src/services"
	"github.com/username/etsyexporter/src/utils"
)

type ExportHandler struct {
	exportService services.ExportService
	validate      *validator.Validate
}

func NewExportHandler(service services.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: service,
		validate:      validator.New(),
	}
}

// HandleGetFields returns the full export field catalog (keys + labels).
func (h *ExportHandler) HandleGetFields(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, models.AllFields, http.StatusOK)
}

// HandleExportCSV streams the selected records and columns of a run as a
// CSV attachment.
func (h *ExportHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	var req services.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid export request payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		logger.L.Warn("Export request failed validation", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("invalid export request: %v", err), http.StatusBadRequest)
		return
	}

	data, filename, err := h.exportService.ExportCSV(req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRunNotFound):
			utils.SendJSONError(w, fmt.Sprintf("extraction run %s not found", req.RunID), http.StatusNotFound)
		case errors.Is(err, services.ErrTemplateNotFound):
			utils.SendJSONError(w, "export template not found", http.StatusNotFound)
		case errors.Is(err, services.ErrNoFieldsSelected):
			utils.SendJSONError(w, "no known export fields selected", http.StatusBadRequest)
		default:
			logger.L.Error("Internal error building CSV export", "runID", req.RunID, "error", err)
			utils.SendJSONError(w, "An internal error occurred while building the export.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.L.Error("Error writing CSV response", "runID", req.RunID, "error", err)
	}
}
