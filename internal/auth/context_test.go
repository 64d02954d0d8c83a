package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hongminglow/lab-portal/internal/models"
)

func TestIdentityFrom_Empty(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		identity *Identity
		min      models.Role
		wantOK   bool
		wantCode int
	}{
		{"no identity", nil, models.RoleUser, false, http.StatusUnauthorized},
		{"user below editor", &Identity{UserID: 1, Role: models.RoleUser}, models.RoleEditor, false, http.StatusForbidden},
		{"editor meets editor", &Identity{UserID: 1, Role: models.RoleEditor}, models.RoleEditor, true, http.StatusOK},
		{"admin meets editor", &Identity{UserID: 1, Role: models.RoleAdmin}, models.RoleEditor, true, http.StatusOK},
		{"editor below admin", &Identity{UserID: 1, Role: models.RoleEditor}, models.RoleAdmin, false, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/news", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tt.identity))
			}
			rec := httptest.NewRecorder()
			_, ok := RequireRole(rec, req, tt.min)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
