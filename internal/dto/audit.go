package dto

import (
	"time"

	"github.com/noah-isme/erp-access-api/internal/models"
)

// AuditLogListRequest captures query parameters for listing audit logs.
type AuditLogListRequest struct {
	EntityType string `form:"entityType"`
	EntityID   string `form:"entityId"`
	Action     string `form:"action"`
	UserID     string `form:"userId"`
	From       string `form:"from"`
	To         string `form:"to"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}

// ToFilter converts query parameters into the repository filter. Timestamps
// accept RFC3339 or plain dates.
func (r AuditLogListRequest) ToFilter() (models.AuditLogFilter, error) {
	filter := models.AuditLogFilter{
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Action:     r.Action,
		UserID:     r.UserID,
		Page:       r.Page,
		PageSize:   r.PageSize,
	}
	if r.From != "" {
		ts, err := parseTime(r.From)
		if err != nil {
			return filter, err
		}
		filter.From = &ts
	}
	if r.To != "" {
		ts, err := parseTime(r.To)
		if err != nil {
			return filter, err
		}
		filter.To = &ts
	}
	return filter, nil
}

func parseTime(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", raw)
}

// AuditLogListResponse is the paginated listing payload.
type AuditLogListResponse struct {
	Logs       []models.AuditLog `json:"logs"`
	Pagination models.Pagination `json:"pagination"`
}

// AuditLogRecordRequest lets trusted clients push a client-side audit event.
type AuditLogRecordRequest struct {
	EntityType  string                 `json:"entityType" binding:"required"`
	EntityID    string                 `json:"entityId" binding:"required"`
	Action      string                 `json:"action" binding:"required"`
	OldData     map[string]interface{} `json:"oldData"`
	NewData     map[string]interface{} `json:"newData"`
	Metadata    map[string]interface{} `json:"metadata"`
	Description string                 `json:"description"`
}

// AuditExportRequest selects the rendered format plus listing filters.
type AuditExportRequest struct {
	Format string `form:"format" binding:"required,oneof=csv pdf"`
	AuditLogListRequest
}
