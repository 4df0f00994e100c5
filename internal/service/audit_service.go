package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/pkg/jobs"
)

type auditStore interface {
	Insert(ctx context.Context, fact *models.ChangeFact) error
}

// AuditService hands change facts to the audit collaborator through a worker
// queue: scheduling never blocks on delivery, and a full buffer drops the
// fact with a log line rather than failing the committed change.
type AuditService struct {
	store  auditStore
	queue  *jobs.Queue
	logger *zap.Logger
}

// AuditServiceConfig tunes the delivery queue.
type AuditServiceConfig struct {
	Workers    int
	BufferSize int
}

// NewAuditService constructs the service and its delivery queue. Call Start
// before recording facts.
func NewAuditService(store auditStore, cfg AuditServiceConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{store: store, logger: logger}
	s.queue = jobs.NewQueue("audit", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start boots the delivery workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues one change fact for delivery.
func (s *AuditService) Record(fact models.ChangeFact) {
	if fact.ID == "" {
		fact.ID = uuid.NewString()
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      fact.ID,
		Type:    "change_fact",
		Payload: fact,
	})
	if err != nil {
		s.logger.Warn("dropping audit change fact",
			zap.String("entity_id", fact.EntityID),
			zap.String("action", string(fact.Action)),
			zap.Error(err))
	}
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	fact, ok := job.Payload.(models.ChangeFact)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}
	if err := s.store.Insert(ctx, &fact); err != nil {
		return err
	}
	return nil
}
