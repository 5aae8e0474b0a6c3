package handlers

import (
	"encoding/json"
	"net/http"

	"habitforge/internal/models"
	"habitforge/internal/service"
)

// SyncHandler serves the offline package and sync endpoints
type SyncHandler struct {
	packages *service.PackageService
	sync     *service.SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(packages *service.PackageService, sync *service.SyncService) *SyncHandler {
	return &SyncHandler{packages: packages, sync: sync}
}

// GetPackage handles GET /api/offline/package, building a fresh offline
// package for the authenticated child.
func (h *SyncHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	childID, ok := ChildFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	pkg, err := h.packages.BuildOfflinePackage(childID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPackageView(pkg))
}

// Sync handles POST /api/offline/sync. The body is the device's local
// snapshot; the response carries the merge outcome and a fresh package.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	childID, ok := ChildFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	var snapshot models.LocalSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.sync.SyncOfflinePackage(childID, &snapshot)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toSyncResultView(result))
}
