package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-access-api/internal/models"
	"github.com/noah-isme/erp-access-api/internal/service"
	"github.com/noah-isme/erp-access-api/pkg/storage"
)

type auditReaderStub struct {
	logs   []models.AuditLog
	total  int
	filter models.AuditLogFilter
	err    error
}

func (s *auditReaderStub) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error) {
	s.filter = filter
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.logs, s.total, nil
}

func newTestAuditHandler(t *testing.T, reader *auditReaderStub) (*AuditHandler, *service.AuditService) {
	t.Helper()
	auditSvc := service.NewAuditService(nil, nil, nil, nil, service.AuditServiceConfig{})
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	exportSvc := service.NewAuditExportService(reader, auditSvc, store, signer, nil, 100)
	return NewAuditHandler(auditSvc, exportSvc, reader), auditSvc
}

func TestAuditHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &auditReaderStub{
		logs: []models.AuditLog{{ID: "1", EntityType: "Customer", Action: "CREATE"}},
		total: 41,
	}
	handler, _ := newTestAuditHandler(t, reader)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit/logs?entityType=Customer&action=CREATE&page=2&pageSize=10", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Customer", reader.filter.EntityType)
	assert.Equal(t, "CREATE", reader.filter.Action)
	assert.Equal(t, 2, reader.filter.Page)
	assert.Equal(t, 10, reader.filter.PageSize)

	var env struct {
		Data       []map[string]interface{} `json:"data"`
		Pagination map[string]interface{}   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, float64(41), env.Pagination["total_count"])
	assert.Equal(t, float64(2), env.Pagination["page"])
}

func TestAuditHandlerListClampsPageSize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &auditReaderStub{}
	handler, _ := newTestAuditHandler(t, reader)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit/logs?pageSize=9999", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, reader.filter.PageSize)
}

func TestAuditHandlerListInvalidTimeFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuditHandler(t, &auditReaderStub{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit/logs?from=not-a-date", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuditHandlerRecordRoutesActions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, auditSvc := newTestAuditHandler(t, &auditReaderStub{})

	r := gin.New()
	r.POST("/audit/logs", handler.Record)

	payload := `{"entityType":"Customer","entityId":"c-1","action":"UPDATE","oldData":{"name":"Acme"},"newData":{"name":"Acme Corp"},"description":"Renamed"}`
	req := httptest.NewRequest(http.MethodPost, "/audit/logs", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	logs := auditSvc.GetLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionUpdate, logs[0].Action)
	require.Len(t, logs[0].Changes, 1)
	assert.Equal(t, "name", logs[0].Changes[0].Field)
}

func TestAuditHandlerRecordRejectsUnknownAction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, auditSvc := newTestAuditHandler(t, &auditReaderStub{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/audit/logs",
		strings.NewReader(`{"entityType":"Customer","entityId":"c-1","action":"PURGE"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Record(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, auditSvc.GetLogs())
}

func TestAuditHandlerBufferLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, auditSvc := newTestAuditHandler(t, &auditReaderStub{})
	auditSvc.LogView(context.Background(), "Report", "r-1", "Viewed report")

	r := gin.New()
	r.GET("/audit/buffer", handler.Buffer)
	r.DELETE("/audit/buffer", handler.ClearBuffer)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/buffer", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Len(t, env.Data, 1)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/audit/buffer", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, auditSvc.GetLogs())
}

func TestAuditHandlerExportAndDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &auditReaderStub{
		logs: []models.AuditLog{{
			ID:         "1",
			EntityType: "Customer",
			Action:     "CREATE",
			Timestamp:  time.Now().UTC(),
		}},
		total: 1,
	}
	handler, _ := newTestAuditHandler(t, reader)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/audit/export?format=csv", nil)
	handler.Export(c)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data struct {
			DownloadURL string `json:"download_url"`
			RowCount    int    `json:"row_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 1, env.Data.RowCount)
	require.NotEmpty(t, env.Data.DownloadURL)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit/export/download?token="+env.Data.DownloadURL, nil)
	handler.Download(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "CREATE")
}

func TestAuditHandlerExportRequiresFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuditHandler(t, &auditReaderStub{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/audit/export", nil)
	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
