package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"habitforge/internal/models"
	"habitforge/internal/security"
)

type fakeDirectory struct {
	family   *models.Family
	children []models.Child
}

func (f *fakeDirectory) GetFamilyByCode(familyCode string) (*models.Family, error) {
	if f.family != nil && f.family.FamilyCode == familyCode {
		return f.family, nil
	}
	return nil, nil
}

func (f *fakeDirectory) ListChildrenByFamily(familyID int64) ([]models.Child, error) {
	return f.children, nil
}

func testDirectory() *fakeDirectory {
	return &fakeDirectory{
		family: &models.Family{ID: 1, FamilyCode: "sunny-otter-01", Email: "parent@example.com"},
		children: []models.Child{
			{ID: 42, FamilyID: 1, Name: "Alex", Age: 6, AvatarColor: "teal"},
		},
	}
}

func TestPair(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid pairing",
			body:       `{"family_code": "sunny-otter-01", "child_id": 42}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong family code",
			body:       `{"family_code": "wrong-code-99", "child_id": 42}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "child not in family",
			body:       `{"family_code": "sunny-otter-01", "child_id": 99}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing fields",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	handler := NewPairHandler(testDirectory(), issuer)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/pair", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.Pair(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Token string       `json:"token"`
				Child childSummary `json:"child"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Child.ID != 42 {
				t.Errorf("child id = %d, want 42", resp.Child.ID)
			}

			subjectID, role, err := issuer.Verify(resp.Token)
			if err != nil {
				t.Fatalf("issued token does not verify: %v", err)
			}
			if subjectID != 42 || role != models.RoleChild {
				t.Errorf("token carries subject %d role %q, want 42 child", subjectID, role)
			}
		})
	}
}

func TestRequireChild(t *testing.T) {
	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	limiter := security.NewRateLimiter(100, time.Minute)
	middleware := NewMiddleware(issuer, limiter)

	childToken, err := issuer.Issue(42, models.RoleChild)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	parentToken, err := issuer.Issue(1, models.RoleParent)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantChild  int64
	}{
		{"missing token", "", http.StatusUnauthorized, 0},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, 0},
		{"parent token rejected", "Bearer " + parentToken, http.StatusForbidden, 0},
		{"child token accepted", "Bearer " + childToken, http.StatusOK, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotChild int64
			next := func(w http.ResponseWriter, r *http.Request) {
				gotChild, _ = ChildFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middleware.RequireChild(next)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotChild != tt.wantChild {
				t.Errorf("child in context = %d, want %d", gotChild, tt.wantChild)
			}
		})
	}
}
