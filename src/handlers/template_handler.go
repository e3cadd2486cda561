package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/etsyexporter/src/logger"
	"github.com/username/etsyexporter/src/models"
	"github.com/username/etsyexporter/src/services"
	"github.com/username/etsyexporter/src/utils"
)

type TemplateHandler struct {
	exportService services.ExportService
}

func NewTemplateHandler(service services.ExportService) *TemplateHandler {
	return &TemplateHandler{
		exportService: service,
	}
}

func (h *TemplateHandler) HandleGetTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	tpl, err := h.exportService.GetTemplate(name)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("export template %q not found", name), http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving export template", "name", name, "error", err)
		utils.SendJSONError(w, "Error retrieving export template", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, tpl, http.StatusOK)
}

type saveTemplateRequest struct {
	FieldKeys []string `json:"field_keys"`
}

// HandleSaveTemplate upserts a named ordered field-key list. The key order
// in the payload is the export column order.
func (h *TemplateHandler) HandleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req saveTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid template payload", http.StatusBadRequest)
		return
	}

	tpl := models.ExportTemplate{Name: name, FieldKeys: req.FieldKeys}
	if err := h.exportService.SaveTemplate(tpl); err != nil {
		if errors.Is(err, services.ErrNoFieldsSelected) {
			utils.SendJSONError(w, "template must contain at least one known field key", http.StatusBadRequest)
			return
		}
		logger.L.Error("Error saving export template", "name", name, "error", err)
		utils.SendJSONError(w, "Error saving export template", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, tpl, http.StatusOK)
}
