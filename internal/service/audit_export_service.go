package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/erp-access-api/internal/models"
	appErrors "github.com/noah-isme/erp-access-api/pkg/errors"
	"github.com/noah-isme/erp-access-api/pkg/export"
	"github.com/noah-isme/erp-access-api/pkg/storage"
)

type auditLogLister interface {
	List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error)
}

type exportAuditRecorder interface {
	LogExport(ctx context.Context, entityType, format string, filters map[string]interface{}, description string)
}

// ExportResult describes a rendered audit export ready for download.
type ExportResult struct {
	ExportID    string    `json:"export_id"`
	Format      string    `json:"format"`
	FileName    string    `json:"file_name"`
	RowCount    int       `json:"row_count"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuditExportService renders persisted audit logs into downloadable CSV or
// PDF files and records the export itself on the audit trail.
type AuditExportService struct {
	lister  auditLogLister
	audit   exportAuditRecorder
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	maxRows int
}

// NewAuditExportService wires the export pipeline together.
func NewAuditExportService(lister auditLogLister, audit exportAuditRecorder, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger, maxRows int) *AuditExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 10000
	}
	return &AuditExportService{
		lister:  lister,
		audit:   audit,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		storage: store,
		signer:  signer,
		logger:  logger,
		maxRows: maxRows,
	}
}

var auditExportHeaders = []string{
	"Timestamp", "Action", "Entity Type", "Entity ID",
	"User", "Email", "IP Address", "Changes", "Description",
}

// Export lists matching audit logs, renders them in the requested format and
// stores the file, returning a signed download token.
func (s *AuditExportService) Export(ctx context.Context, format string, filter models.AuditLogFilter) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	filter.Page = 1
	filter.PageSize = s.maxRows
	logs, total, err := s.lister.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	if total > len(logs) {
		s.logger.Warn("audit export truncated",
			zap.Int("total", total),
			zap.Int("exported", len(logs)))
	}

	dataset := buildAuditDataset(logs)

	var rendered []byte
	switch format {
	case "csv":
		rendered, err = s.csv.Render(dataset)
	case "pdf":
		rendered, err = s.pdf.Render(dataset, "Audit Trail")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := newAuditID()
	fileName := fmt.Sprintf("audit-logs-%s.%s", exportID, format)
	relPath, err := s.storage.Save(fileName, rendered)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}

	if s.audit != nil {
		s.audit.LogExport(ctx, "AuditLog", format, exportFilters(filter),
			fmt.Sprintf("Exported %d audit log entries as %s", len(logs), strings.ToUpper(format)))
	}

	return &ExportResult{
		ExportID:    exportID,
		Format:      format,
		FileName:    fileName,
		RowCount:    len(logs),
		DownloadURL: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// Download validates the signed token and opens the referenced export file.
func (s *AuditExportService) Download(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file no longer available")
	}
	return file, relPath, nil
}

// Cleanup removes export files older than the signer TTL allows.
func (s *AuditExportService) Cleanup(ttl time.Duration) {
	deleted, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("removed expired export files", zap.Int("count", len(deleted)))
	}
}

func buildAuditDataset(logs []models.AuditLog) export.Dataset {
	rows := make([]map[string]string, 0, len(logs))
	for _, log := range logs {
		rows = append(rows, map[string]string{
			"Timestamp":   log.Timestamp.UTC().Format(time.RFC3339),
			"Action":      log.Action,
			"Entity Type": log.EntityType,
			"Entity ID":   log.EntityID,
			"User":        log.UserName,
			"Email":       log.UserEmail,
			"IP Address":  log.IPAddress,
			"Changes":     formatChanges(log.Changes),
			"Description": log.Description,
		})
	}
	return export.Dataset{Headers: auditExportHeaders, Rows: rows}
}

func formatChanges(changes []models.AuditChange) string {
	if len(changes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", c.Field, renderValue(c.OldValue), renderValue(c.NewValue)))
	}
	return strings.Join(parts, "; ")
}

func renderValue(v interface{}) string {
	if v == nil {
		return "null"
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

func exportFilters(filter models.AuditLogFilter) map[string]interface{} {
	out := map[string]interface{}{}
	if filter.EntityType != "" {
		out["entityType"] = filter.EntityType
	}
	if filter.EntityID != "" {
		out["entityId"] = filter.EntityID
	}
	if filter.Action != "" {
		out["action"] = filter.Action
	}
	if filter.UserID != "" {
		out["userId"] = filter.UserID
	}
	if filter.From != nil {
		out["from"] = filter.From.UTC().Format(time.RFC3339)
	}
	if filter.To != nil {
		out["to"] = filter.To.UTC().Format(time.RFC3339)
	}
	return out
}
