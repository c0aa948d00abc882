package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/erp-access-api/internal/models"
)

// AuditRepository persists audit records into the append-only audit_logs
// table. Rows are never updated or deleted; the table grows unboundedly,
// which is a known limitation of the audit trail design.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Name identifies this sink in diagnostics and metrics.
func (r *AuditRepository) Name() string {
	return "postgres"
}

type auditLogRow struct {
	ID          string    `db:"id"`
	EntityType  string    `db:"entity_type"`
	EntityID    string    `db:"entity_id"`
	Action      string    `db:"action"`
	UserID      string    `db:"user_id"`
	UserName    string    `db:"user_name"`
	UserEmail   string    `db:"user_email"`
	IPAddress   string    `db:"ip_address"`
	UserAgent   string    `db:"user_agent"`
	Changes     []byte    `db:"changes"`
	Metadata    []byte    `db:"metadata"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row *auditLogRow) toModel() (*models.AuditLog, error) {
	log := &models.AuditLog{
		ID:          row.ID,
		EntityType:  row.EntityType,
		EntityID:    row.EntityID,
		Action:      row.Action,
		UserID:      row.UserID,
		UserName:    row.UserName,
		UserEmail:   row.UserEmail,
		Timestamp:   row.CreatedAt,
		IPAddress:   row.IPAddress,
		UserAgent:   row.UserAgent,
		Description: row.Description,
	}
	if len(row.Changes) > 0 {
		if err := json.Unmarshal(row.Changes, &log.Changes); err != nil {
			return nil, fmt.Errorf("decode audit changes: %w", err)
		}
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &log.Metadata); err != nil {
			return nil, fmt.Errorf("decode audit metadata: %w", err)
		}
	}
	return log, nil
}

// Store appends one audit record. The insert is idempotent on the record id
// so retried deliveries cannot duplicate rows.
func (r *AuditRepository) Store(ctx context.Context, log *models.AuditLog) error {
	changes, err := json.Marshal(log.Changes)
	if err != nil {
		return fmt.Errorf("encode audit changes: %w", err)
	}
	metadata, err := json.Marshal(log.Metadata)
	if err != nil {
		return fmt.Errorf("encode audit metadata: %w", err)
	}

	const query = `INSERT INTO audit_logs (id, entity_type, entity_id, action, user_id, user_name, user_email, ip_address, user_agent, changes, metadata, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query,
		log.ID, log.EntityType, log.EntityID, log.Action,
		log.UserID, log.UserName, log.UserEmail,
		log.IPAddress, log.UserAgent,
		changes, metadata, log.Description, log.Timestamp,
	); err != nil {
		return fmt.Errorf("store audit log: %w", err)
	}
	return nil
}

// List returns persisted audit records based on filters with total count,
// newest first.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error) {
	baseQuery := `FROM audit_logs WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.EntityType != "" {
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)+1))
		args = append(args, filter.EntityType)
	}
	if filter.EntityID != "" {
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", len(args)+1))
		args = append(args, filter.EntityID)
	}
	if filter.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)+1))
		args = append(args, filter.Action)
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) " + baseQuery
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	// callers clamp the upper bound; exports legitimately request large pages
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	selectQuery := fmt.Sprintf(
		"SELECT id, entity_type, entity_id, action, user_id, user_name, user_email, ip_address, user_agent, changes, metadata, description, created_at %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		baseQuery, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, offset)

	var rows []auditLogRow
	if err := r.db.SelectContext(ctx, &rows, selectQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}

	logs := make([]models.AuditLog, 0, len(rows))
	for i := range rows {
		log, err := rows[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, *log)
	}
	return logs, total, nil
}
