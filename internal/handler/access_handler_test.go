package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-access-api/internal/middleware"
	"github.com/noah-isme/erp-access-api/internal/models"
	"github.com/noah-isme/erp-access-api/internal/service"
)

type envelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
}

func testContextWithRoles(rec *httptest.ResponseRecorder, roles ...models.Role) (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, r := gin.CreateTestContext(rec)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Roles: roles})
	c.Set(middleware.ContextPermissionsKey, service.PermissionServiceForRoles(roles))
	return c, r
}

func TestAccessHandlerSummary(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := testContextWithRoles(rec, models.RoleSalesUser)
	c.Request = httptest.NewRequest(http.MethodGet, "/access/summary", nil)

	NewAccessHandler(nil).Summary(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, []interface{}{"SALES_USER"}, env.Data["roles"])
	assert.Equal(t, []interface{}{"customers", "inventory", "sales", "dashboard"}, env.Data["accessibleModules"])
	assert.NotEmpty(t, env.Data["permissions"])
	assert.NotEmpty(t, env.Data["summary"])
}

func TestAccessHandlerSummaryUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/access/summary", nil)

	NewAccessHandler(nil).Summary(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccessHandlerCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := testContextWithRoles(rec, models.RoleViewer)
	c.Request = httptest.NewRequest(http.MethodPost, "/access/check",
		strings.NewReader(`{"resource":"sales","action":"read"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	NewAccessHandler(service.NewMetricsService()).Check(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, true, env.Data["allowed"])
	assert.Equal(t, "sales", env.Data["resource"])
}

func TestAccessHandlerCheckDenied(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := testContextWithRoles(rec, models.RoleViewer)
	c.Request = httptest.NewRequest(http.MethodPost, "/access/check",
		strings.NewReader(`{"resource":"sales","action":"delete"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	NewAccessHandler(nil).Check(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, false, env.Data["allowed"])
}

func TestAccessHandlerCheckBatch(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := testContextWithRoles(rec, models.RoleViewer)
	c.Request = httptest.NewRequest(http.MethodPost, "/access/check-batch",
		strings.NewReader(`{"checks":[{"resource":"sales","action":"read"},{"resource":"sales","action":"delete"}]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	NewAccessHandler(nil).CheckBatch(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data struct {
			Results []map[string]interface{} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data.Results, 2)
	assert.Equal(t, true, env.Data.Results[0]["allowed"])
	assert.Equal(t, false, env.Data.Results[1]["allowed"])
}

func TestAccessHandlerCheckInvalidPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := testContextWithRoles(rec, models.RoleViewer)
	c.Request = httptest.NewRequest(http.MethodPost, "/access/check", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	NewAccessHandler(nil).Check(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccessHandlerControl(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := testContextWithRoles(rec, models.RoleAccountant)
	c.Request = httptest.NewRequest(http.MethodGet, "/access/control/bank", nil)
	c.Params = gin.Params{{Key: "resource", Value: "bank"}}

	NewAccessHandler(nil).Control(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data struct {
			Resource string               `json:"resource"`
			Access   models.AccessControl `json:"access"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "bank", env.Data.Resource)
	assert.True(t, env.Data.Access.CanCreate)
	assert.False(t, env.Data.Access.CanDelete)
}
