package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-access-api/internal/models"
	appErrors "github.com/noah-isme/erp-access-api/pkg/errors"
	"github.com/noah-isme/erp-access-api/pkg/storage"
)

type auditListerStub struct {
	logs   []models.AuditLog
	total  int
	filter models.AuditLogFilter
	err    error
}

func (s *auditListerStub) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error) {
	s.filter = filter
	if s.err != nil {
		return nil, 0, s.err
	}
	total := s.total
	if total == 0 {
		total = len(s.logs)
	}
	return s.logs, total, nil
}

type exportAuditStub struct {
	entityTypes []string
	formats     []string
	filters     []map[string]interface{}
}

func (s *exportAuditStub) LogExport(ctx context.Context, entityType, format string, filters map[string]interface{}, description string) {
	s.entityTypes = append(s.entityTypes, entityType)
	s.formats = append(s.formats, format)
	s.filters = append(s.filters, filters)
}

func newTestExportService(t *testing.T, lister *auditListerStub, audit *exportAuditStub) *AuditExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewAuditExportService(lister, audit, store, signer, nil, 100)
}

func sampleAuditLogs() []models.AuditLog {
	return []models.AuditLog{
		{
			ID:         "1700000000000-aabbccdd",
			EntityType: "Customer",
			EntityID:   "c-1",
			Action:     models.AuditActionUpdate,
			UserName:   "Jane Roe",
			UserEmail:  "jane@example.com",
			Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			IPAddress:  "10.0.0.1",
			Changes: []models.AuditChange{
				{Field: "name", OldValue: "Acme", NewValue: "Acme Corp", Type: models.FieldTypeString},
			},
			Description: "Updated customer",
		},
		{
			ID:          "1700000000001-eeff0011",
			EntityType:  "Vendor",
			EntityID:    "v-2",
			Action:      models.AuditActionDelete,
			UserName:    "John Doe",
			UserEmail:   "john@example.com",
			Timestamp:   time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
			IPAddress:   "10.0.0.2",
			Description: "Deleted vendor",
		},
	}
}

func TestAuditExportServiceCSVRoundTrip(t *testing.T) {
	lister := &auditListerStub{logs: sampleAuditLogs()}
	audit := &exportAuditStub{}
	svc := newTestExportService(t, lister, audit)

	result, err := svc.Export(context.Background(), "csv", models.AuditLogFilter{EntityType: "Customer"})
	require.NoError(t, err)

	assert.Equal(t, "csv", result.Format)
	assert.Equal(t, 2, result.RowCount)
	assert.True(t, strings.HasSuffix(result.FileName, ".csv"))
	assert.NotEmpty(t, result.DownloadURL)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	// the export itself lands on the audit trail with the bulk semantics
	require.Len(t, audit.formats, 1)
	assert.Equal(t, "AuditLog", audit.entityTypes[0])
	assert.Equal(t, "csv", audit.formats[0])
	assert.Equal(t, map[string]interface{}{"entityType": "Customer"}, audit.filters[0])

	file, _, err := svc.Download(result.DownloadURL)
	require.NoError(t, err)
	defer file.Close()

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "Timestamp,Action,Entity Type,Entity ID,User,Email,IP Address,Changes,Description")
	assert.Contains(t, text, "UPDATE")
	assert.Contains(t, text, "name: Acme -> Acme Corp")
	assert.Contains(t, text, "john@example.com")
}

func TestAuditExportServicePDF(t *testing.T) {
	lister := &auditListerStub{logs: sampleAuditLogs()}
	svc := newTestExportService(t, lister, &exportAuditStub{})

	result, err := svc.Export(context.Background(), "pdf", models.AuditLogFilter{})
	require.NoError(t, err)
	assert.Equal(t, "pdf", result.Format)

	file, _, err := svc.Download(result.DownloadURL)
	require.NoError(t, err)
	defer file.Close()

	header := make([]byte, 5)
	_, err = io.ReadFull(file, header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(header))
}

func TestAuditExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newTestExportService(t, &auditListerStub{}, &exportAuditStub{})

	_, err := svc.Export(context.Background(), "xlsx", models.AuditLogFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuditExportServiceCapsRowCount(t *testing.T) {
	lister := &auditListerStub{logs: sampleAuditLogs(), total: 5000}
	svc := newTestExportService(t, lister, &exportAuditStub{})

	_, err := svc.Export(context.Background(), "csv", models.AuditLogFilter{Page: 7, PageSize: 3})
	require.NoError(t, err)

	// the export always reads from the first page up to the cap
	assert.Equal(t, 1, lister.filter.Page)
	assert.Equal(t, 100, lister.filter.PageSize)
}

func TestAuditExportServiceDownloadRejectsTamperedToken(t *testing.T) {
	lister := &auditListerStub{logs: sampleAuditLogs()}
	svc := newTestExportService(t, lister, &exportAuditStub{})

	result, err := svc.Export(context.Background(), "csv", models.AuditLogFilter{})
	require.NoError(t, err)

	_, _, err = svc.Download(result.DownloadURL + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
