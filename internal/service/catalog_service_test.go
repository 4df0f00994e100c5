package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryops/guard-roster-api/internal/dto"
	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/internal/repository"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
)

type shiftStoreStub struct {
	shifts        map[string]*models.ShiftDefinition
	created       []*models.ShiftDefinition
	updateParams  []repository.UpdateShiftParams
	counts        map[string]int
	createErr     error
	deleteErr     error
	deletedCodes  []string
	assignmentErr error
}

func (s *shiftStoreStub) ListBySite(ctx context.Context, siteID string) ([]models.ShiftDefinition, error) {
	out := make([]models.ShiftDefinition, 0, len(s.shifts))
	for _, shift := range s.shifts {
		out = append(out, *shift)
	}
	return out, nil
}

func (s *shiftStoreStub) GetBySiteAndCode(ctx context.Context, siteID, shiftCode string) (*models.ShiftDefinition, error) {
	if shift, ok := s.shifts[shiftCode]; ok {
		return shift, nil
	}
	return nil, sql.ErrNoRows
}

func (s *shiftStoreStub) Create(ctx context.Context, shift *models.ShiftDefinition) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, shift)
	return nil
}

func (s *shiftStoreStub) Update(ctx context.Context, siteID, shiftCode string, params repository.UpdateShiftParams) error {
	if _, ok := s.shifts[shiftCode]; !ok {
		return sql.ErrNoRows
	}
	s.updateParams = append(s.updateParams, params)
	return nil
}

func (s *shiftStoreStub) Delete(ctx context.Context, siteID, shiftCode string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedCodes = append(s.deletedCodes, shiftCode)
	return nil
}

func (s *shiftStoreStub) AssignmentCount(ctx context.Context, siteID, shiftCode string) (int, error) {
	if s.assignmentErr != nil {
		return 0, s.assignmentErr
	}
	return s.counts[shiftCode], nil
}

func newCatalogFixture(shifts *shiftStoreStub) *CatalogService {
	return NewCatalogService(
		shifts,
		siteReaderStub{sites: map[string]*models.Site{"site-1": activeSite()}},
		nil,
		nil,
	)
}

func TestCatalogServiceCreateSlotClassifiesByStart(t *testing.T) {
	store := &shiftStoreStub{shifts: map[string]*models.ShiftDefinition{}}
	svc := newCatalogFixture(store)

	slot, err := svc.CreateSlot(context.Background(), "site-1", dto.CreateSlotRequest{
		ShiftCode:      "NIGHT",
		Name:           "Night Shift",
		StartTime:      "20:00",
		EndTime:        "08:00",
		NumberOfPeople: 2,
	}, schedulerClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ShiftNight, slot.Classification)
	require.Len(t, store.created, 1)
}

func TestCatalogServiceCreateSlotRejectsBadTime(t *testing.T) {
	svc := newCatalogFixture(&shiftStoreStub{shifts: map[string]*models.ShiftDefinition{}})

	for _, start := range []string{"8am", "0a:00", "1b:3c", "25:00", "08:61"} {
		_, err := svc.CreateSlot(context.Background(), "site-1", dto.CreateSlotRequest{
			ShiftCode: "DAY",
			Name:      "Day Shift",
			StartTime: start,
			EndTime:   "20:00",
		}, schedulerClaims())

		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr), "start %q should be rejected", start)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
}

func TestCatalogServiceCreateSlotForbiddenForViewer(t *testing.T) {
	svc := newCatalogFixture(&shiftStoreStub{shifts: map[string]*models.ShiftDefinition{}})

	_, err := svc.CreateSlot(context.Background(), "site-1", dto.CreateSlotRequest{
		ShiftCode: "DAY", Name: "Day Shift", StartTime: "08:00", EndTime: "20:00",
	}, &models.JWTClaims{UserID: "user-2", Role: models.RoleViewer})

	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestCatalogServiceListSlotsMarksLocked(t *testing.T) {
	store := &shiftStoreStub{
		shifts: map[string]*models.ShiftDefinition{
			"DAY": {SiteID: "site-1", ShiftCode: "DAY", Classification: models.ShiftDay},
		},
		counts: map[string]int{"DAY": 4},
	}
	svc := newCatalogFixture(store)

	slots, err := svc.ListSlots(context.Background(), "site-1")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Locked)
}

func TestCatalogServiceDeleteSlotWrapsLock(t *testing.T) {
	store := &shiftStoreStub{
		shifts:    map[string]*models.ShiftDefinition{"DAY": {SiteID: "site-1", ShiftCode: "DAY"}},
		deleteErr: &models.SlotLockedError{SiteID: "site-1", ShiftCode: "DAY"},
	}
	svc := newCatalogFixture(store)

	err := svc.DeleteSlot(context.Background(), "site-1", "DAY", schedulerClaims())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrSlotLocked.Code, appErr.Code)
	var locked *models.SlotLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "DAY", locked.ShiftCode)
}

func TestCatalogServiceUpdateSlotRejectsUnknownClassification(t *testing.T) {
	store := &shiftStoreStub{
		shifts: map[string]*models.ShiftDefinition{"DAY": {SiteID: "site-1", ShiftCode: "DAY", StartTime: "08:00", EndTime: "20:00"}},
	}
	svc := newCatalogFixture(store)

	bad := "twilight"
	_, err := svc.UpdateSlot(context.Background(), "site-1", "DAY", dto.UpdateSlotRequest{Classification: &bad}, schedulerClaims())

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
