package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"habitforge/internal/service"
)

// SessionHandler serves the session endpoints used by the device client
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// StartSession handles POST /api/sessions/start. Starting is idempotent: a
// repeat request for the same module returns the existing session.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	childID, ok := ChildFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	var req struct {
		ModuleID int64 `json:"module_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ModuleID <= 0 {
		respondWithError(w, http.StatusBadRequest, "module_id is required", nil)
		return
	}

	started, err := h.sessions.StartSession(childID, req.ModuleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionStartView{
		Session: toSessionView(started.Session),
		Module:  toModuleView(started.Module),
	})
}

// CompleteActivity handles POST /api/sessions/{id}/complete
func (h *SessionHandler) CompleteActivity(w http.ResponseWriter, r *http.Request) {
	childID, ok := ChildFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid session id", err)
		return
	}

	var req struct {
		ActivityID int64 `json:"activity_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ActivityID <= 0 {
		respondWithError(w, http.StatusBadRequest, "activity_id is required", nil)
		return
	}

	session, err := h.sessions.GetSession(sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if session.ChildID != childID {
		respondWithError(w, http.StatusForbidden, "Session belongs to another child", nil)
		return
	}

	result, err := h.sessions.CompleteActivity(sessionID, req.ActivityID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, completionView{
		Feedback: result.Feedback,
		Session:  toSessionView(result.Session),
	})
}
