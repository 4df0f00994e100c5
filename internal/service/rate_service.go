package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/sentryops/guard-roster-api/internal/models"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
)

type ratePositionReader interface {
	GetByID(ctx context.Context, id string) (*models.Position, error)
}

type rateOverrideReader interface {
	GetBySiteAndPosition(ctx context.Context, siteID, positionID string) (*models.SiteServiceRate, error)
}

// RateService resolves the effective daily pay components for a
// (site, position) pair. Each component falls back independently: a site
// override only replaces the components it actually sets, every other
// component keeps the position default.
type RateService struct {
	positions ratePositionReader
	rates     rateOverrideReader
	logger    *zap.Logger
}

// NewRateService constructs the resolver.
func NewRateService(positions ratePositionReader, rates rateOverrideReader, logger *zap.Logger) *RateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateService{positions: positions, rates: rates, logger: logger}
}

// Resolve returns the effective components for the pair. The result is a pure
// function of current configuration; callers freeze it onto assignments at
// commit time.
func (s *RateService) Resolve(ctx context.Context, siteID, positionID string) (models.RateComponents, error) {
	position, err := s.positions.GetByID(ctx, positionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RateComponents{}, appErrors.Clone(appErrors.ErrNotFound, "position not found")
		}
		return models.RateComponents{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load position")
	}
	if !position.Active {
		return models.RateComponents{}, appErrors.Clone(appErrors.ErrValidation, "position is inactive")
	}

	components := models.RateComponents{
		PositionID:     position.ID,
		PositionCode:   position.Code,
		PositionName:   position.Name,
		DailyRate:      position.DailyRate,
		DiligenceBonus: position.DiligenceBonus,
		SevenDayBonus:  position.SevenDayBonus,
		PointBonus:     position.PointBonus,
	}

	override, err := s.rates.GetBySiteAndPosition(ctx, siteID, positionID)
	if err != nil {
		return models.RateComponents{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site service rate")
	}
	if override == nil || override.UseDefaultRate {
		return components, nil
	}

	if override.CustomRate != nil {
		components.DailyRate = *override.CustomRate
		components.Overridden = true
	}
	if override.CustomDiligenceBonus != nil {
		components.DiligenceBonus = *override.CustomDiligenceBonus
		components.Overridden = true
	}
	if override.CustomSevenDayBonus != nil {
		components.SevenDayBonus = *override.CustomSevenDayBonus
		components.Overridden = true
	}
	if override.CustomPointBonus != nil {
		components.PointBonus = *override.CustomPointBonus
		components.Overridden = true
	}
	return components, nil
}
