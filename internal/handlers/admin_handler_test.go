package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"habitforge/internal/models"
	"habitforge/internal/security"
)

type fakeCatalog struct {
	modules map[int64]*models.ContentModule
}

func (f *fakeCatalog) GetModuleByID(moduleID int64) (*models.ContentModule, error) {
	return f.modules[moduleID], nil
}

func (f *fakeCatalog) UpdateModuleStatus(moduleID int64, status models.ModuleStatus) error {
	m := f.modules[moduleID]
	m.Status = status
	m.Version++
	return nil
}

func TestUpdateModuleStatus(t *testing.T) {
	tests := []struct {
		name       string
		moduleID   string
		body       string
		wantStatus int
		wantFinal  models.ModuleStatus
	}{
		{
			name:       "publish draft",
			moduleID:   "1",
			body:       `{"status": "published"}`,
			wantStatus: http.StatusOK,
			wantFinal:  models.ModulePublished,
		},
		{
			name:       "archive published",
			moduleID:   "2",
			body:       `{"status": "archived"}`,
			wantStatus: http.StatusOK,
			wantFinal:  models.ModuleArchived,
		},
		{
			name:       "archived is terminal",
			moduleID:   "3",
			body:       `{"status": "published"}`,
			wantStatus: http.StatusConflict,
			wantFinal:  models.ModuleArchived,
		},
		{
			name:       "no moving backwards",
			moduleID:   "2",
			body:       `{"status": "draft"}`,
			wantStatus: http.StatusConflict,
			wantFinal:  models.ModulePublished,
		},
		{
			name:       "unknown status",
			moduleID:   "1",
			body:       `{"status": "retired"}`,
			wantStatus: http.StatusBadRequest,
			wantFinal:  models.ModuleDraft,
		},
		{
			name:       "unknown module",
			moduleID:   "99",
			body:       `{"status": "published"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "malformed id",
			moduleID:   "abc",
			body:       `{"status": "published"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &fakeCatalog{modules: map[int64]*models.ContentModule{
				1: {ID: 1, Title: "Brushing Basics", Status: models.ModuleDraft, Version: 1},
				2: {ID: 2, Title: "Tidy Time", Status: models.ModulePublished, Version: 1},
				3: {ID: 3, Title: "Old Routine", Status: models.ModuleArchived, Version: 2},
			}}
			handler := NewAdminHandler(catalog)

			req := httptest.NewRequest(http.MethodPost, "/api/admin/modules/"+tt.moduleID+"/status", strings.NewReader(tt.body))
			req.SetPathValue("id", tt.moduleID)
			rec := httptest.NewRecorder()

			handler.UpdateModuleStatus(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantFinal == "" {
				return
			}
			moduleID := map[string]int64{"1": 1, "2": 2, "3": 3}[tt.moduleID]
			if got := catalog.modules[moduleID].Status; got != tt.wantFinal {
				t.Errorf("module status = %q, want %q", got, tt.wantFinal)
			}
		})
	}
}

func TestUpdateModuleStatusBumpsVersion(t *testing.T) {
	catalog := &fakeCatalog{modules: map[int64]*models.ContentModule{
		1: {ID: 1, Title: "Brushing Basics", Status: models.ModuleDraft, Version: 3},
	}}
	handler := NewAdminHandler(catalog)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/modules/1/status", strings.NewReader(`{"status": "published"}`))
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()

	handler.UpdateModuleStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := catalog.modules[1].Version; got != 4 {
		t.Errorf("module version = %d, want 4", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	limiter := security.NewRateLimiter(100, time.Minute)
	middleware := NewMiddleware(issuer, limiter)

	adminToken, err := issuer.Issue(1, models.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	childToken, err := issuer.Issue(42, models.RoleChild)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"child token rejected", "Bearer " + childToken, http.StatusForbidden},
		{"admin token accepted", "Bearer " + adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/admin/modules/1/status", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middleware.RequireAdmin(next)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
