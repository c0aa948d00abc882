package models

import "time"

// AuditAction constants represent the closed set of recordable events.
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
	AuditActionView   = "VIEW"
	AuditActionExport = "EXPORT"
	AuditActionLogin  = "LOGIN"
	AuditActionLogout = "LOGOUT"
)

// AuditBulkEntityID is the sentinel entity id used for export events, which
// are never tied to a single entity instance.
const AuditBulkEntityID = "bulk"

// FieldType classifies the runtime shape of a changed field value.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeObject  FieldType = "object"
	FieldTypeArray   FieldType = "array"
)

// AuditChange is one field-level delta within an UPDATE record.
type AuditChange struct {
	Field    string      `json:"field"`
	OldValue interface{} `json:"oldValue"`
	NewValue interface{} `json:"newValue"`
	Type     FieldType   `json:"type"`
}

// AuditLog is an immutable record of one audited event. Records are never
// mutated after construction; the in-memory buffer and the durable sinks
// both treat them as append-only.
type AuditLog struct {
	ID          string                 `json:"id"`
	EntityType  string                 `json:"entityType"`
	EntityID    string                 `json:"entityId"`
	Action      string                 `json:"action"`
	UserID      string                 `json:"userId"`
	UserName    string                 `json:"userName"`
	UserEmail   string                 `json:"userEmail"`
	Timestamp   time.Time              `json:"timestamp"`
	IPAddress   string                 `json:"ipAddress"`
	UserAgent   string                 `json:"userAgent"`
	Changes     []AuditChange          `json:"changes,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Description string                 `json:"description,omitempty"`
}

// AuditLogFilter captures filtering criteria for listing persisted audit logs.
type AuditLogFilter struct {
	EntityType string
	EntityID   string
	Action     string
	UserID     string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}
