package handlers

import (
	"encoding/json"
	"net/http"

	"habitforge/internal/models"
	"habitforge/internal/security"
)

// familyDirectory is the lookup surface pairing needs, implemented by
// repository.ChildRepository.
type familyDirectory interface {
	GetFamilyByCode(familyCode string) (*models.Family, error)
	ListChildrenByFamily(familyID int64) ([]models.Child, error)
}

// PairHandler pairs a device with a child profile. The family code is the
// shared secret a parent reads off their account; a successful pair issues
// the child-scoped token every other endpoint requires.
type PairHandler struct {
	families familyDirectory
	issuer   *security.TokenIssuer
}

// NewPairHandler creates a new pair handler
func NewPairHandler(families familyDirectory, issuer *security.TokenIssuer) *PairHandler {
	return &PairHandler{families: families, issuer: issuer}
}

type childSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Age         int    `json:"age"`
	AvatarColor string `json:"avatar_color"`
}

// Pair handles POST /api/pair
func (h *PairHandler) Pair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FamilyCode string `json:"family_code"`
		ChildID    int64  `json:"child_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.FamilyCode == "" || req.ChildID <= 0 {
		respondWithError(w, http.StatusBadRequest, "family_code and child_id are required", nil)
		return
	}

	family, err := h.families.GetFamilyByCode(req.FamilyCode)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	if family == nil {
		// Same response as a wrong child id so the code cannot be probed.
		respondWithError(w, http.StatusUnauthorized, "Invalid family code or child", nil)
		return
	}

	children, err := h.families.ListChildrenByFamily(family.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	var child *models.Child
	for i := range children {
		if children[i].ID == req.ChildID {
			child = &children[i]
			break
		}
	}
	if child == nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid family code or child", nil)
		return
	}

	token, err := h.issuer.Issue(child.ID, models.RoleChild)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"child": childSummary{
			ID:          child.ID,
			Name:        child.Name,
			Age:         child.Age,
			AvatarColor: child.AvatarColor,
		},
	})
}
