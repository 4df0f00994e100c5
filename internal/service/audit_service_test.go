package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/pkg/jobs"
)

type auditStoreStub struct {
	mu    sync.Mutex
	facts []models.ChangeFact
	err   error
}

func (s *auditStoreStub) Insert(ctx context.Context, fact *models.ChangeFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.facts = append(s.facts, *fact)
	return nil
}

func (s *auditStoreStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.facts)
}

func TestAuditServiceDeliversFactAfterRecord(t *testing.T) {
	store := &auditStoreStub{}
	svc := NewAuditService(store, AuditServiceConfig{Workers: 1, BufferSize: 4}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	svc.Record(models.ChangeFact{
		Action:     models.AuditActionCreate,
		EntityType: "schedule",
		EntityID:   "site-1:2026-03-14",
	})

	assert.Eventually(t, func() bool {
		return store.count() == 1
	}, time.Second, 10*time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.facts, 1)
	assert.NotEmpty(t, store.facts[0].ID)
	assert.Equal(t, "site-1:2026-03-14", store.facts[0].EntityID)
}

func TestAuditServiceHandleRejectsForeignPayload(t *testing.T) {
	svc := NewAuditService(&auditStoreStub{}, AuditServiceConfig{}, nil)

	err := svc.handle(context.Background(), jobs.Job{ID: "x", Type: "change_fact", Payload: "not a fact"})
	require.Error(t, err)
}

func TestAuditServiceRecordBeforeStartDropsQuietly(t *testing.T) {
	store := &auditStoreStub{}
	svc := NewAuditService(store, AuditServiceConfig{}, nil)

	// queue not started: the fact is dropped, never delivered, no panic
	svc.Record(models.ChangeFact{Action: models.AuditActionDelete, EntityID: "site-1:2026-03-14"})
	assert.Equal(t, 0, store.count())
}
