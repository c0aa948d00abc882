package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erp-access-api/internal/dto"
	"github.com/noah-isme/erp-access-api/internal/models"
	"github.com/noah-isme/erp-access-api/internal/service"
	appErrors "github.com/noah-isme/erp-access-api/pkg/errors"
	"github.com/noah-isme/erp-access-api/pkg/response"
)

type auditLogReader interface {
	List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error)
}

// AuditHandler exposes the audit trail over HTTP: persisted listing, the
// in-memory buffer, client-pushed events and exports.
type AuditHandler struct {
	audit   *service.AuditService
	exports *service.AuditExportService
	reader  auditLogReader
}

// NewAuditHandler creates a new handler. The reader abstracts the audit
// repository so tests can stub persistence.
func NewAuditHandler(audit *service.AuditService, exports *service.AuditExportService, reader auditLogReader) *AuditHandler {
	return &AuditHandler{audit: audit, exports: exports, reader: reader}
}

// List returns persisted audit logs matching the query filters.
func (h *AuditHandler) List(c *gin.Context) {
	var req dto.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid time filter"))
		return
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	logs, total, err := h.reader.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	response.JSON(c, http.StatusOK, logs, &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	})
}

// Buffer returns the in-memory audit buffer of this instance.
func (h *AuditHandler) Buffer(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.audit.GetLogs(), nil)
}

// ClearBuffer empties the in-memory audit buffer. Durable sinks are not
// touched.
func (h *AuditHandler) ClearBuffer(c *gin.Context) {
	h.audit.ClearLogs()
	response.NoContent(c)
}

// Record accepts a client-pushed audit event and routes it through the same
// pipeline server-side events use.
func (h *AuditHandler) Record(c *gin.Context) {
	var req dto.AuditLogRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid audit payload"))
		return
	}

	ctx := c.Request.Context()
	switch req.Action {
	case models.AuditActionCreate:
		h.audit.LogCreate(ctx, req.EntityType, req.EntityID, req.NewData, req.Description)
	case models.AuditActionUpdate:
		h.audit.LogUpdate(ctx, req.EntityType, req.EntityID, req.OldData, req.NewData, req.Description)
	case models.AuditActionDelete:
		h.audit.LogDelete(ctx, req.EntityType, req.EntityID, req.OldData, req.Description)
	case models.AuditActionView:
		h.audit.LogView(ctx, req.EntityType, req.EntityID, req.Description)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported audit action"))
		return
	}

	c.Status(http.StatusAccepted)
}

// Export renders matching audit logs as CSV or PDF and returns a signed
// download token.
func (h *AuditHandler) Export(c *gin.Context) {
	var req dto.AuditExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export parameters"))
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid time filter"))
		return
	}

	result, err := h.exports.Export(c.Request.Context(), req.Format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Download streams a rendered export referenced by a signed token.
func (h *AuditHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	file, relPath, err := h.exports.Download(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	name := filepath.Base(relPath)
	contentType := "application/octet-stream"
	switch filepath.Ext(name) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
