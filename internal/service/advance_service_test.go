package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryops/guard-roster-api/internal/dto"
	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/internal/repository"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
)

type advanceStoreStub struct {
	docs        map[string]*models.DailyAdvance
	created     []*models.DailyAdvance
	lastFilter  repository.AdvanceListFilter
	listResult  []models.DailyAdvance
	lastStatus  models.AdvanceStatus
	lastStamp   *string
	statusCalls int
}

func (s *advanceStoreStub) Create(ctx context.Context, doc *models.DailyAdvance) error {
	s.created = append(s.created, doc)
	return nil
}

func (s *advanceStoreStub) GetByID(ctx context.Context, id string) (*models.DailyAdvance, error) {
	if doc, ok := s.docs[id]; ok {
		copied := *doc
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *advanceStoreStub) List(ctx context.Context, filter repository.AdvanceListFilter) ([]models.DailyAdvance, error) {
	s.lastFilter = filter
	return s.listResult, nil
}

func (s *advanceStoreStub) Update(ctx context.Context, id string, params repository.UpdateAdvanceParams) error {
	if _, ok := s.docs[id]; !ok {
		return sql.ErrNoRows
	}
	return nil
}

func (s *advanceStoreStub) UpdateStatus(ctx context.Context, id string, status models.AdvanceStatus, approvedBy *string) error {
	doc, ok := s.docs[id]
	if !ok {
		return sql.ErrNoRows
	}
	doc.Status = status
	doc.ApprovedBy = approvedBy
	s.lastStatus = status
	s.lastStamp = approvedBy
	s.statusCalls++
	return nil
}

func (s *advanceStoreStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.docs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.docs, id)
	return nil
}

func draftAdvance(owner string) *models.DailyAdvance {
	return &models.DailyAdvance{
		ID:        "adv-1",
		DocNumber: "ADV-2026-001",
		Date:      time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Type:      models.AdvanceTypeAdvance,
		Status:    models.AdvanceStatusDraft,
		Items:     models.AdvanceItems{{GuardID: "guard-1", Amount: 500}},
		CreatedBy: owner,
	}
}

func newAdvanceFixture(store *advanceStoreStub) *AdvanceService {
	guards := guardReaderStub{guards: map[string]*models.Guard{"guard-1": activeGuard()}}
	return NewAdvanceService(store, guards, nil, nil)
}

func TestAdvanceServiceListScopesNonAdminsToOwnDocs(t *testing.T) {
	store := &advanceStoreStub{}
	svc := newAdvanceFixture(store)

	_, err := svc.List(context.Background(), dto.AdvanceListQuery{Type: "cash"}, schedulerClaims())
	require.NoError(t, err)
	assert.Equal(t, "user-1", store.lastFilter.CreatedBy)
	assert.Equal(t, models.AdvanceTypeCash, store.lastFilter.Type)

	_, err = svc.List(context.Background(), dto.AdvanceListQuery{}, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Empty(t, store.lastFilter.CreatedBy)
}

func TestAdvanceServiceListSumsItemTotals(t *testing.T) {
	store := &advanceStoreStub{listResult: []models.DailyAdvance{{
		ID:    "adv-1",
		Items: models.AdvanceItems{{GuardID: "guard-1", Amount: 500}, {GuardID: "guard-2", Amount: 250}},
	}}}
	svc := newAdvanceFixture(store)

	docs, err := svc.List(context.Background(), dto.AdvanceListQuery{}, schedulerClaims())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 750.0, docs[0].TotalAmount)
}

func TestAdvanceServiceGetRefusesForeignDoc(t *testing.T) {
	store := &advanceStoreStub{docs: map[string]*models.DailyAdvance{"adv-1": draftAdvance("someone-else")}}
	svc := newAdvanceFixture(store)

	_, err := svc.Get(context.Background(), "adv-1", schedulerClaims())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	doc, err := svc.Get(context.Background(), "adv-1", &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "ADV-2026-001", doc.DocNumber)
}

func TestAdvanceServiceCreateDefaultsToDraft(t *testing.T) {
	store := &advanceStoreStub{}
	svc := newAdvanceFixture(store)

	doc, err := svc.Create(context.Background(), dto.CreateAdvanceRequest{
		DocNumber: "ADV-2026-002",
		Date:      "2026-03-14",
		Type:      models.AdvanceTypeCash,
		Items:     []dto.AdvanceItemRequest{{GuardID: "guard-1", Amount: 300, Reason: "travel"}},
	}, schedulerClaims())
	require.NoError(t, err)
	assert.Equal(t, models.AdvanceStatusDraft, doc.Status)
	assert.Equal(t, "user-1", doc.CreatedBy)
	assert.Equal(t, 300.0, doc.TotalAmount)
	require.Len(t, store.created, 1)
}

func TestAdvanceServiceCreateForbiddenForViewer(t *testing.T) {
	svc := newAdvanceFixture(&advanceStoreStub{})

	_, err := svc.Create(context.Background(), dto.CreateAdvanceRequest{
		DocNumber: "ADV-2026-003",
		Date:      "2026-03-14",
		Type:      models.AdvanceTypeAdvance,
		Items:     []dto.AdvanceItemRequest{{GuardID: "guard-1", Amount: 100}},
	}, &models.JWTClaims{UserID: "user-2", Role: models.RoleViewer})

	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestAdvanceServiceCreateRejectsUnknownGuard(t *testing.T) {
	svc := newAdvanceFixture(&advanceStoreStub{})

	_, err := svc.Create(context.Background(), dto.CreateAdvanceRequest{
		DocNumber: "ADV-2026-004",
		Date:      "2026-03-14",
		Type:      models.AdvanceTypeAdvance,
		Items:     []dto.AdvanceItemRequest{{GuardID: "ghost", Amount: 100}},
	}, schedulerClaims())

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAdvanceServiceUpdateFrozenAfterVerdict(t *testing.T) {
	approved := draftAdvance("user-1")
	approved.Status = models.AdvanceStatusApproved
	store := &advanceStoreStub{docs: map[string]*models.DailyAdvance{"adv-1": approved}}
	svc := newAdvanceFixture(store)

	newNumber := "ADV-2026-005"
	_, err := svc.Update(context.Background(), "adv-1", dto.UpdateAdvanceRequest{DocNumber: &newNumber}, schedulerClaims())

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAdvanceServiceVerdictRequiresAdmin(t *testing.T) {
	store := &advanceStoreStub{docs: map[string]*models.DailyAdvance{"adv-1": draftAdvance("user-1")}}
	svc := newAdvanceFixture(store)

	_, err := svc.UpdateStatus(context.Background(), "adv-1", dto.AdvanceStatusRequest{Status: models.AdvanceStatusApproved}, schedulerClaims())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Zero(t, store.statusCalls)
}

func TestAdvanceServiceVerdictStampsApprover(t *testing.T) {
	store := &advanceStoreStub{docs: map[string]*models.DailyAdvance{"adv-1": draftAdvance("user-1")}}
	svc := newAdvanceFixture(store)

	doc, err := svc.UpdateStatus(context.Background(), "adv-1",
		dto.AdvanceStatusRequest{Status: models.AdvanceStatusRejected},
		&models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.AdvanceStatusRejected, doc.Status)
	require.NotNil(t, store.lastStamp)
	assert.Equal(t, "admin-1", *store.lastStamp)
}

func TestAdvanceServiceOwnerMovesDraftToPending(t *testing.T) {
	store := &advanceStoreStub{docs: map[string]*models.DailyAdvance{"adv-1": draftAdvance("user-1")}}
	svc := newAdvanceFixture(store)

	doc, err := svc.UpdateStatus(context.Background(), "adv-1",
		dto.AdvanceStatusRequest{Status: models.AdvanceStatusPending}, schedulerClaims())
	require.NoError(t, err)
	assert.Equal(t, models.AdvanceStatusPending, doc.Status)
	assert.Nil(t, store.lastStamp)
}
