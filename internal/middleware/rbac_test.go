package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/erp-access-api/internal/models"
	"github.com/noah-isme/erp-access-api/internal/service"
)

func newGuardedRouter(roles []models.Role, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if roles != nil {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Roles: roles})
			c.Set(ContextPermissionsKey, service.PermissionServiceForRoles(roles))
		}
		c.Next()
	})
	r.GET("/guarded", guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doGuarded(r *gin.Engine) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	return rec
}

func TestRequirePermissionAllows(t *testing.T) {
	r := newGuardedRouter([]models.Role{models.RoleViewer},
		RequirePermission(nil, models.ResourceSales, models.ActionRead))
	assert.Equal(t, http.StatusOK, doGuarded(r).Code)
}

func TestRequirePermissionDenies(t *testing.T) {
	r := newGuardedRouter([]models.Role{models.RoleViewer},
		RequirePermission(nil, models.ResourceSales, models.ActionDelete))
	assert.Equal(t, http.StatusForbidden, doGuarded(r).Code)
}

func TestRequirePermissionWithoutSession(t *testing.T) {
	r := newGuardedRouter(nil,
		RequirePermission(nil, models.ResourceSales, models.ActionRead))
	assert.Equal(t, http.StatusUnauthorized, doGuarded(r).Code)
}

func TestRequireAnyPermission(t *testing.T) {
	guard := RequireAnyPermission(nil,
		models.PermissionFor(models.ResourceSales, models.ActionDelete),
		models.PermissionFor(models.ResourceSales, models.ActionRead))

	allowed := newGuardedRouter([]models.Role{models.RoleViewer}, guard)
	assert.Equal(t, http.StatusOK, doGuarded(allowed).Code)

	denied := newGuardedRouter([]models.Role{"UNKNOWN"}, guard)
	assert.Equal(t, http.StatusForbidden, doGuarded(denied).Code)
}

func TestRequireRoles(t *testing.T) {
	guard := RequireRoles(nil, models.RoleSuperAdmin, models.RoleAdmin)

	admin := newGuardedRouter([]models.Role{models.RoleAdmin}, guard)
	assert.Equal(t, http.StatusOK, doGuarded(admin).Code)

	viewer := newGuardedRouter([]models.Role{models.RoleViewer}, guard)
	assert.Equal(t, http.StatusForbidden, doGuarded(viewer).Code)
}

func TestRequirePermissionObservesMetrics(t *testing.T) {
	metrics := service.NewMetricsService()
	r := newGuardedRouter([]models.Role{models.RoleViewer},
		RequirePermission(metrics, models.ResourceSales, models.ActionRead))
	assert.Equal(t, http.StatusOK, doGuarded(r).Code)
}
