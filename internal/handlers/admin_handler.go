package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"habitforge/internal/models"
)

// moduleLifecycle is the catalog surface module administration needs,
// implemented by repository.ModuleRepository.
type moduleLifecycle interface {
	GetModuleByID(moduleID int64) (*models.ContentModule, error)
	UpdateModuleStatus(moduleID int64, status models.ModuleStatus) error
}

// AdminHandler serves the content administration endpoints. Published
// content is immutable; the only write is moving a module forward through
// its lifecycle, which also bumps the content version so cached offline
// packages report as outdated.
type AdminHandler struct {
	modules moduleLifecycle
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(modules moduleLifecycle) *AdminHandler {
	return &AdminHandler{modules: modules}
}

// UpdateModuleStatus handles POST /api/admin/modules/{id}/status
func (h *AdminHandler) UpdateModuleStatus(w http.ResponseWriter, r *http.Request) {
	moduleID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid module id", err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status, err := models.ParseModuleStatus(req.Status)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	module, err := h.modules.GetModuleByID(moduleID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	if module == nil {
		respondWithError(w, http.StatusNotFound, "module not found", nil)
		return
	}

	if !module.Status.CanTransitionTo(status) {
		msg := fmt.Sprintf("cannot move module from %s to %s", module.Status, status)
		respondWithError(w, http.StatusConflict, msg, nil)
		return
	}

	if err := h.modules.UpdateModuleStatus(moduleID, status); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	updated, err := h.modules.GetModuleByID(moduleID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respondJSON(w, http.StatusOK, toModuleView(updated))
}
