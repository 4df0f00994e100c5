package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sentryops/guard-roster-api/internal/dto"
	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/internal/repository"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
)

const (
	historyCachePrefix     = "roster:history:"
	topSiteLimit           = 5
	defaultHistoryCacheTTL = 10 * time.Minute
)

type historyStore interface {
	ListByGuardAndRange(ctx context.Context, guardID string, start, end time.Time) ([]repository.HistoryRow, error)
	GuardTotals(ctx context.Context, guardID string) (models.WorkHistorySummary, error)
	TopSites(ctx context.Context, guardID string, limit int) ([]models.SiteWorkTotal, error)
}

type historyGuardReader interface {
	GetByID(ctx context.Context, id string) (*models.Guard, error)
}

// HistoryService replays frozen assignment snapshots into payroll views.
// Totals come exclusively from the components stored at commit time, so the
// answer for a closed period never drifts when rates or the catalog change.
type HistoryService struct {
	history    historyStore
	guards     historyGuardReader
	cache      rosterCache
	validator  *validator.Validate
	logger     *zap.Logger
	historyTTL time.Duration
}

// HistoryServiceConfig tunes caching behaviour.
type HistoryServiceConfig struct {
	CacheTTL time.Duration
}

// NewHistoryService builds a HistoryService with sane defaults.
func NewHistoryService(history historyStore, guards historyGuardReader, cache rosterCache, validate *validator.Validate, logger *zap.Logger, cfg HistoryServiceConfig) *HistoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultHistoryCacheTTL
	}
	return &HistoryService{
		history:    history,
		guards:     guards,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		historyTTL: ttl,
	}
}

// WorkHistory assembles a guard's per-day records and range summary.
func (s *HistoryService) WorkHistory(ctx context.Context, guardID string, query dto.WorkHistoryQuery) (*models.WorkHistory, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid history query")
	}
	start, err := parseRosterDate(query.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseRosterDate(query.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}

	guard, err := s.ensureGuard(ctx, guardID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("%s%s:%s:%s", historyCachePrefix, guardID, query.StartDate, query.EndDate)
	if s.cache != nil {
		var cached models.WorkHistory
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	rows, err := s.history.ListByGuardAndRange(ctx, guardID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work history")
	}

	history := &models.WorkHistory{
		GuardID:   guard.ID,
		GuardCode: guard.GuardCode,
		GuardName: guard.FullName(),
		StartDate: start,
		EndDate:   end,
		WorkDays:  make([]models.WorkDay, 0, len(rows)),
	}
	for _, row := range rows {
		income := row.TotalIncome()
		history.WorkDays = append(history.WorkDays, models.WorkDay{
			Date:                row.ScheduleDate,
			SiteID:              row.SiteID,
			SiteName:            row.SiteName,
			ShiftCode:           row.ShiftCode,
			ShiftClassification: row.ShiftClassification,
			Position:            row.Position,
			DailyRate:           row.DailyRate,
			DiligenceBonus:      row.DiligenceBonus,
			SevenDayBonus:       row.SevenDayBonus,
			PointBonus:          row.PointBonus,
			PositionAllowance:   row.PositionAllowance,
			OtherAllowance:      row.OtherAllowance,
			TotalIncome:         income,
		})
		history.Summary.TotalWorkDays++
		history.Summary.TotalIncome += income
		if row.ShiftClassification == models.ShiftNight {
			history.Summary.NightShiftCount++
		} else {
			history.Summary.DayShiftCount++
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, history, s.historyTTL); err != nil {
			s.logger.Warn("failed to cache work history", zap.Error(err))
		}
	}
	return history, nil
}

// GuardSummary rolls up a guard's complete committed history with their most
// worked sites.
func (s *HistoryService) GuardSummary(ctx context.Context, guardID string) (*models.GuardSummary, error) {
	guard, err := s.ensureGuard(ctx, guardID)
	if err != nil {
		return nil, err
	}

	totals, err := s.history.GuardTotals(ctx, guardID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate guard totals")
	}
	topSites, err := s.history.TopSites(ctx, guardID, topSiteLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate guard site totals")
	}

	return &models.GuardSummary{
		GuardID:   guard.ID,
		GuardCode: guard.GuardCode,
		GuardName: guard.FullName(),
		Summary:   totals,
		TopSites:  topSites,
	}, nil
}

func (s *HistoryService) ensureGuard(ctx context.Context, guardID string) (*models.Guard, error) {
	guard, err := s.guards.GetByID(ctx, guardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "guard not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load guard")
	}
	return guard, nil
}
