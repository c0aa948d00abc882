package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/erp-access-api/internal/models"
	"github.com/noah-isme/erp-access-api/pkg/jobs"
)

// excludedAuditFields are bookkeeping fields never reported in diffs even
// when they change.
var excludedAuditFields = map[string]struct{}{
	"updatedAt": {},
	"updatedBy": {},
	"version":   {},
}

// AuditSink receives completed audit records for durable storage. Delivery
// is best-effort; sink failures never propagate to the logging caller.
type AuditSink interface {
	Name() string
	Store(ctx context.Context, log *models.AuditLog) error
}

// sessionUserReader resolves the persisted "current user" record written by
// the login flow.
type sessionUserReader interface {
	Get(ctx context.Context, sessionID string) (*models.SessionUser, error)
}

// AuditServiceConfig tunes the background sink dispatch.
type AuditServiceConfig struct {
	QueueWorkers int
	QueueBuffer  int
	MaxRetries   int
	RetryDelay   time.Duration
}

// AuditService records attributable, diffable audit entries for every
// state-changing or sensitive-read operation. Entries are buffered in memory
// for the session and handed to durable sinks through a fire-and-forget
// queue; callers never receive or check a delivery result.
type AuditService struct {
	mu     sync.Mutex
	buffer []models.AuditLog

	sessions sessionUserReader
	sinks    []AuditSink
	queue    *jobs.Queue
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewAuditService constructs an AuditService. A nil session reader degrades
// every entry to the anonymous identity; an empty sink list keeps records in
// the memory buffer only.
func NewAuditService(sessions sessionUserReader, sinks []AuditSink, metrics *MetricsService, logger *zap.Logger, cfg AuditServiceConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{
		sessions: sessions,
		sinks:    sinks,
		metrics:  metrics,
		logger:   logger,
	}
	if cfg.QueueWorkers > 0 {
		s.queue = jobs.NewQueue("audit-sink", s.persist, jobs.QueueConfig{
			Workers:    cfg.QueueWorkers,
			BufferSize: cfg.QueueBuffer,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Logger:     logger,
		})
	}
	return s
}

// Start launches the background sink writers. No-op when the service was
// configured without a queue (synchronous mode, used in tests).
func (s *AuditService) Start(ctx context.Context) {
	if s.queue != nil {
		s.queue.Start(ctx)
	}
}

// Stop drains the background writers.
func (s *AuditService) Stop() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

// LogCreate records the creation of an entity.
func (s *AuditService) LogCreate(ctx context.Context, entityType, entityID string, data map[string]interface{}, description string) {
	s.record(s.buildLog(ctx, entityType, entityID, models.AuditActionCreate, nil,
		map[string]interface{}{"createdData": data}, description))
}

// LogUpdate records an entity update with a field-level diff. Full old/new
// snapshots are retained in metadata alongside the diff so the change is
// reconstructable even if the diffing has a bug.
func (s *AuditService) LogUpdate(ctx context.Context, entityType, entityID string, oldData, newData map[string]interface{}, description string) {
	s.record(s.buildLog(ctx, entityType, entityID, models.AuditActionUpdate,
		calculateChanges(oldData, newData),
		map[string]interface{}{"oldData": oldData, "newData": newData}, description))
}

// LogDelete records the deletion of an entity with its last snapshot.
func (s *AuditService) LogDelete(ctx context.Context, entityType, entityID string, data map[string]interface{}, description string) {
	s.record(s.buildLog(ctx, entityType, entityID, models.AuditActionDelete, nil,
		map[string]interface{}{"deletedData": data}, description))
}

// LogView records a sensitive read.
func (s *AuditService) LogView(ctx context.Context, entityType, entityID string, description string) {
	s.record(s.buildLog(ctx, entityType, entityID, models.AuditActionView, nil, nil, description))
}

// LogExport records a bulk export. Exports are never tied to one entity
// instance, so the entity id is always the bulk sentinel.
func (s *AuditService) LogExport(ctx context.Context, entityType, format string, filters map[string]interface{}, description string) {
	s.record(s.buildLog(ctx, entityType, models.AuditBulkEntityID, models.AuditActionExport, nil,
		map[string]interface{}{"format": format, "filters": filters}, description))
}

// LogLogin records a successful authentication. The acting identity is taken
// from the explicit parameters, not the session store: at login time the
// persisted current-user record may not yet reflect the new identity.
func (s *AuditService) LogLogin(ctx context.Context, userID, userName, userEmail string) {
	log := s.buildLog(ctx, "User", userID, models.AuditActionLogin, nil, nil,
		fmt.Sprintf("User %s logged in", userName))
	log.UserID = userID
	log.UserName = userName
	log.UserEmail = userEmail
	s.record(log)
}

// LogLogout records the end of a session; identity handling mirrors LogLogin.
func (s *AuditService) LogLogout(ctx context.Context, userID, userName, userEmail string) {
	log := s.buildLog(ctx, "User", userID, models.AuditActionLogout, nil, nil,
		fmt.Sprintf("User %s logged out", userName))
	log.UserID = userID
	log.UserName = userName
	log.UserEmail = userEmail
	s.record(log)
}

// GetLogs returns the in-memory buffer accumulated this session. Durability
// lives in the sinks; a process restart loses this buffer by design.
func (s *AuditService) GetLogs() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.buffer...)
}

// ClearLogs empties the in-memory buffer only; the durable sinks are never
// purged.
func (s *AuditService) ClearLogs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = nil
}

// buildLog is the single assembly point all public logging methods funnel
// through.
func (s *AuditService) buildLog(ctx context.Context, entityType, entityID, action string, changes []models.AuditChange, metadata map[string]interface{}, description string) *models.AuditLog {
	user := s.currentUser(ctx)
	ip, userAgent := clientInfoFromContext(ctx)
	return &models.AuditLog{
		ID:          newAuditID(),
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		UserID:      user.ID,
		UserName:    user.Name,
		UserEmail:   user.Email,
		Timestamp:   time.Now().UTC(),
		IPAddress:   ip,
		UserAgent:   userAgent,
		Changes:     changes,
		Metadata:    metadata,
		Description: description,
	}
}

// record appends to the session buffer and hands the entry to the sinks.
// The buffer append always succeeds; sink delivery failures are swallowed
// after being reported to the diagnostic log.
func (s *AuditService) record(log *models.AuditLog) {
	s.mu.Lock()
	s.buffer = append(s.buffer, *log)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveAuditRecord(log.Action)
	}

	if s.queue == nil {
		if err := s.persist(context.Background(), jobs.Job{ID: log.ID, Type: "audit_log", Payload: log}); err != nil {
			s.logger.Warn("audit sink write failed", zap.String("audit_id", log.ID), zap.Error(err))
		}
		return
	}

	if err := s.queue.Enqueue(jobs.Job{ID: log.ID, Type: "audit_log", Payload: log}); err != nil {
		s.logger.Warn("failed to enqueue audit log", zap.String("audit_id", log.ID), zap.Error(err))
	}
}

// persist writes one record to every configured sink. Sink inserts are
// idempotent on the record id, so a retried job cannot duplicate entries in
// the local store.
func (s *AuditService) persist(ctx context.Context, job jobs.Job) error {
	log, ok := job.Payload.(*models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit job payload %T", job.Payload)
	}

	var errs []error
	for _, sink := range s.sinks {
		err := sink.Store(ctx, log)
		if s.metrics != nil {
			s.metrics.ObserveSinkWrite(sink.Name(), err)
		}
		if err != nil {
			s.logger.Warn("audit sink write failed",
				zap.String("sink", sink.Name()),
				zap.String("audit_id", log.ID),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *AuditService) currentUser(ctx context.Context) models.SessionUser {
	if s.sessions == nil {
		return models.AnonymousUser
	}
	sessionID := SessionIDFromContext(ctx)
	if sessionID == "" {
		return models.AnonymousUser
	}
	user, err := s.sessions.Get(ctx, sessionID)
	if err != nil || user == nil {
		return models.AnonymousUser
	}
	return *user
}

// newAuditID combines wall-clock time with a random suffix. The result is
// only locally unique: it distinguishes entries within one session's buffer,
// not across processes.
func newAuditID() string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("%d-%d", time.Now().UnixMilli(), time.Now().UnixNano()%100000)
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(suffix))
}

// calculateChanges computes the one-directional field diff between two
// snapshots: only keys present in newData are considered, bookkeeping fields
// are skipped, and values are compared by their JSON serialization. The
// asymmetry and the serialization-based comparison are part of the contract
// consumed by audit viewers; do not replace them with a structural deep
// equal.
func calculateChanges(oldData, newData map[string]interface{}) []models.AuditChange {
	keys := make([]string, 0, len(newData))
	for key := range newData {
		if _, excluded := excludedAuditFields[key]; excluded {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changes := make([]models.AuditChange, 0, len(keys))
	for _, key := range keys {
		oldJSON, _ := json.Marshal(oldData[key])
		newJSON, _ := json.Marshal(newData[key])
		if bytes.Equal(oldJSON, newJSON) {
			continue
		}
		changes = append(changes, models.AuditChange{
			Field:    key,
			OldValue: oldData[key],
			NewValue: newData[key],
			Type:     fieldType(newData[key]),
		})
	}
	return changes
}

// fieldType classifies a changed value: arrays first, then objects (nil
// deliberately classifies as object), then booleans, then numbers, and
// everything else as string.
func fieldType(value interface{}) models.FieldType {
	if value == nil {
		return models.FieldTypeObject
	}
	switch reflect.TypeOf(value).Kind() {
	case reflect.Slice, reflect.Array:
		return models.FieldTypeArray
	case reflect.Map, reflect.Struct, reflect.Ptr:
		return models.FieldTypeObject
	case reflect.Bool:
		return models.FieldTypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return models.FieldTypeNumber
	default:
		return models.FieldTypeString
	}
}
