package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/service"
)

func performWithRole(t *testing.T, role model.Role, allowed ...model.Role) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected",
		func(c *gin.Context) {
			c.Set(ContextKeyClaims, &service.Claims{Role: role, UserID: uuid.New()})
		},
		RequireRole(allowed...),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    model.Role
		allowed []model.Role
		want    int
	}{
		{"exact match", model.RoleStudent, []model.Role{model.RoleStudent}, http.StatusOK},
		{"one of several", model.RoleUniversityAdmin, []model.Role{model.RoleSuperAdmin, model.RoleUniversityAdmin}, http.StatusOK},
		{"denied", model.RoleStudent, []model.Role{model.RoleSuperAdmin}, http.StatusForbidden},
		{"admin cannot use student routes", model.RoleUniversityAdmin, []model.Role{model.RoleStudent}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performWithRole(t, tt.role, tt.allowed...)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", RequireRole(model.RoleStudent), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetPrincipal(c)
	assert.False(t, ok)

	universityID := uuid.New()
	c.Set(ContextKeyClaims, &service.Claims{
		Role:         model.RoleUniversityAdmin,
		UserID:       uuid.New(),
		UniversityID: &universityID,
	})

	principal, ok := GetPrincipal(c)
	assert.True(t, ok)
	assert.True(t, principal.CanManageUniversity(universityID))
	assert.False(t, principal.CanManageUniversity(uuid.New()))
}
