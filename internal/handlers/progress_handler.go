package handlers

import (
	"net/http"

	"habitforge/internal/service"
)

// ProgressHandler serves the progress and badge read endpoints
type ProgressHandler struct {
	progress *service.ProgressService
	badges   *service.BadgeService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress *service.ProgressService, badges *service.BadgeService) *ProgressHandler {
	return &ProgressHandler{progress: progress, badges: badges}
}

// GetProgress handles GET /api/progress
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	childID, ok := ChildFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	progress, err := h.progress.GetProgress(childID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProgressView(progress))
}

// GetBadges handles GET /api/badges, returning the child's earned badges
func (h *ProgressHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	childID, ok := ChildFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	earned, err := h.badges.ListEarned(childID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"badges": toBadgeViews(earned),
	})
}
