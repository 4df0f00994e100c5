package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sentryops/guard-roster-api/internal/dto"
	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/internal/repository"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
)

type catalogShiftStore interface {
	ListBySite(ctx context.Context, siteID string) ([]models.ShiftDefinition, error)
	GetBySiteAndCode(ctx context.Context, siteID, shiftCode string) (*models.ShiftDefinition, error)
	Create(ctx context.Context, shift *models.ShiftDefinition) error
	Update(ctx context.Context, siteID, shiftCode string, params repository.UpdateShiftParams) error
	Delete(ctx context.Context, siteID, shiftCode string) error
	AssignmentCount(ctx context.Context, siteID, shiftCode string) (int, error)
}

type catalogSiteReader interface {
	GetByID(ctx context.Context, id string) (*models.Site, error)
}

// CatalogService manages the per-site shift slot catalog. Slots are pure
// structure: no dates, no guards, no pay. A slot with committed assignments
// is locked against removal.
type CatalogService struct {
	shifts    catalogShiftStore
	sites     catalogSiteReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService builds a CatalogService with sane defaults.
func NewCatalogService(shifts catalogShiftStore, sites catalogSiteReader, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{shifts: shifts, sites: sites, validator: validate, logger: logger}
}

// ListSlots returns the site's slots decorated with their lock status.
func (s *CatalogService) ListSlots(ctx context.Context, siteID string) ([]dto.SlotResponse, error) {
	if err := s.ensureSite(ctx, siteID); err != nil {
		return nil, err
	}
	shifts, err := s.shifts.ListBySite(ctx, siteID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shift slots")
	}
	slots := make([]dto.SlotResponse, 0, len(shifts))
	for _, shift := range shifts {
		count, err := s.shifts.AssignmentCount(ctx, siteID, shift.ShiftCode)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot usage")
		}
		slots = append(slots, dto.SlotResponse{ShiftDefinition: shift, Locked: count > 0})
	}
	return slots, nil
}

// GetSlot returns one slot with its lock status.
func (s *CatalogService) GetSlot(ctx context.Context, siteID, shiftCode string) (*dto.SlotResponse, error) {
	shift, err := s.shifts.GetBySiteAndCode(ctx, siteID, shiftCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift slot")
	}
	count, err := s.shifts.AssignmentCount(ctx, siteID, shiftCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot usage")
	}
	return &dto.SlotResponse{ShiftDefinition: *shift, Locked: count > 0}, nil
}

// CreateSlot registers a new shift slot for the site.
func (s *CatalogService) CreateSlot(ctx context.Context, siteID string, req dto.CreateSlotRequest, claims *models.JWTClaims) (*dto.SlotResponse, error) {
	if err := requireScheduler(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift slot payload")
	}
	if err := validateSlotTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := s.ensureSite(ctx, siteID); err != nil {
		return nil, err
	}

	classification := models.ShiftClassification(req.Classification)
	if req.Classification == "" {
		classification = classifyByStart(req.StartTime)
	}
	if !classification.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classification must be day or night")
	}

	shift := &models.ShiftDefinition{
		SiteID:         siteID,
		ShiftCode:      req.ShiftCode,
		Name:           req.Name,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		NumberOfPeople: req.NumberOfPeople,
		Classification: classification,
	}
	if err := s.shifts.Create(ctx, shift); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift slot")
	}

	s.logger.Info("shift slot created",
		zap.String("site_id", siteID),
		zap.String("shift_code", shift.ShiftCode),
		zap.Int("number_of_people", shift.NumberOfPeople))
	return &dto.SlotResponse{ShiftDefinition: *shift}, nil
}

// UpdateSlot edits an existing slot. All fields are freely editable; capacity
// reductions only constrain future commits, existing assignments stay put.
func (s *CatalogService) UpdateSlot(ctx context.Context, siteID, shiftCode string, req dto.UpdateSlotRequest, claims *models.JWTClaims) (*dto.SlotResponse, error) {
	if err := requireScheduler(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift slot payload")
	}
	if req.StartTime != nil || req.EndTime != nil {
		current, err := s.shifts.GetBySiteAndCode(ctx, siteID, shiftCode)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "shift slot not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift slot")
		}
		start, end := current.StartTime, current.EndTime
		if req.StartTime != nil {
			start = *req.StartTime
		}
		if req.EndTime != nil {
			end = *req.EndTime
		}
		if err := validateSlotTimes(start, end); err != nil {
			return nil, err
		}
	}

	params := repository.UpdateShiftParams{
		Name:           req.Name,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		NumberOfPeople: req.NumberOfPeople,
	}
	if req.Classification != nil {
		classification := models.ShiftClassification(*req.Classification)
		if !classification.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "classification must be day or night")
		}
		params.Classification = &classification
	}

	if err := s.shifts.Update(ctx, siteID, shiftCode, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shift slot")
	}
	return s.GetSlot(ctx, siteID, shiftCode)
}

// DeleteSlot removes a slot, refusing while any committed assignment on any
// date still references it.
func (s *CatalogService) DeleteSlot(ctx context.Context, siteID, shiftCode string, claims *models.JWTClaims) error {
	if err := requireScheduler(claims); err != nil {
		return err
	}
	if err := s.shifts.Delete(ctx, siteID, shiftCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "shift slot not found")
		}
		var locked *models.SlotLockedError
		if errors.As(err, &locked) {
			return appErrors.Wrap(err, appErrors.ErrSlotLocked.Code, appErrors.ErrSlotLocked.Status, locked.Error())
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete shift slot")
	}
	s.logger.Info("shift slot deleted",
		zap.String("site_id", siteID),
		zap.String("shift_code", shiftCode))
	return nil
}

func (s *CatalogService) ensureSite(ctx context.Context, siteID string) error {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "site not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site")
	}
	if !site.Active {
		return appErrors.Clone(appErrors.ErrValidation, "site is inactive")
	}
	return nil
}

func validateSlotTimes(start, end string) error {
	if !isClockTime(start) || !isClockTime(end) {
		return appErrors.Clone(appErrors.ErrValidation, "start_time and end_time must be HH:MM")
	}
	// Equal boundaries are allowed: a 24h slot wraps back to its start.
	return nil
}

func isClockTime(value string) bool {
	if len(value) != 5 || value[2] != ':' {
		return false
	}
	for _, c := range []byte{value[0], value[1], value[3], value[4]} {
		if c < '0' || c > '9' {
			return false
		}
	}
	hh := int(value[0]-'0')*10 + int(value[1]-'0')
	mm := int(value[3]-'0')*10 + int(value[4]-'0')
	return hh < 24 && mm < 60
}

// classifyByStart derives the day/night classification for slots created
// without an explicit one. Shifts starting between 06:00 and 17:59 count as
// day shifts.
func classifyByStart(start string) models.ShiftClassification {
	if len(start) < 2 {
		return models.ShiftDay
	}
	hh := int(start[0]-'0')*10 + int(start[1]-'0')
	if hh >= 6 && hh < 18 {
		return models.ShiftDay
	}
	return models.ShiftNight
}
