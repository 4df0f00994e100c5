package service

import (
	"context"
	"database/sql"
	"encoding/json"
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
	scheduleEntityType   = "schedule"
	indexCachePrefix     = "roster:index:"
	maxIndexRangeDays    = 92
	defaultIndexCacheTTL = 5 * time.Minute
)

type rosterLedger interface {
	Assign(ctx context.Context, params repository.AssignParams) (*models.Assignment, error)
	Unassign(ctx context.Context, siteID string, date time.Time, shiftCode, guardID string) (*models.Assignment, error)
	Move(ctx context.Context, siteID string, date time.Time, guardID, fromShift, toShift string) (*models.Assignment, error)
	Replace(ctx context.Context, params repository.ReplaceParams) ([]models.Assignment, []models.Assignment, error)
	ListAssignments(ctx context.Context, siteID string, date time.Time) ([]models.Assignment, error)
	Index(ctx context.Context, start, end time.Time) ([]repository.ScheduleIndexRow, error)
	List(ctx context.Context, filter repository.ScheduleListFilter) ([]models.ScheduleListItem, int, error)
}

type rosterGuardReader interface {
	GetByID(ctx context.Context, id string) (*models.Guard, error)
	ListAvailableOn(ctx context.Context, date time.Time) ([]models.Guard, error)
}

type rosterSiteReader interface {
	GetByID(ctx context.Context, id string) (*models.Site, error)
}

type rateResolver interface {
	Resolve(ctx context.Context, siteID, positionID string) (models.RateComponents, error)
}

type rosterCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type auditSink interface {
	Record(fact models.ChangeFact)
}

type assignmentObserver interface {
	RecordAssignmentChange(action string)
}

// RosterService orchestrates assignment commits: it validates the target
// guard and site, resolves pay components, then hands the fully resolved
// assignment to the ledger for atomic commit. Change facts go to the audit
// sink only after the ledger transaction succeeded.
type RosterService struct {
	ledger    rosterLedger
	guards    rosterGuardReader
	sites     rosterSiteReader
	rates     rateResolver
	cache     rosterCache
	audit     auditSink
	metrics   assignmentObserver
	validator *validator.Validate
	logger    *zap.Logger
	indexTTL  time.Duration
}

// RosterServiceConfig tunes caching behaviour.
type RosterServiceConfig struct {
	IndexCacheTTL time.Duration
}

// NewRosterService builds a RosterService with sane defaults.
func NewRosterService(
	ledger rosterLedger,
	guards rosterGuardReader,
	sites rosterSiteReader,
	rates rateResolver,
	cache rosterCache,
	audit auditSink,
	metrics assignmentObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg RosterServiceConfig,
) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.IndexCacheTTL
	if ttl <= 0 {
		ttl = defaultIndexCacheTTL
	}
	return &RosterService{
		ledger:    ledger,
		guards:    guards,
		sites:     sites,
		rates:     rates,
		cache:     cache,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		indexTTL:  ttl,
	}
}

// Assign commits one guard into one shift slot on one date. The resolved pay
// components are frozen onto the assignment; later rate or catalog edits
// never touch it.
func (s *RosterService) Assign(ctx context.Context, req dto.AssignRequest, claims *models.JWTClaims) (*models.Assignment, error) {
	if err := requireScheduler(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	date, err := parseRosterDate(req.Date)
	if err != nil {
		return nil, err
	}

	guard, err := s.ensureGuard(ctx, req.GuardID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSiteActive(ctx, req.SiteID); err != nil {
		return nil, err
	}
	rate, err := s.rates.Resolve(ctx, req.SiteID, req.PositionID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.ledger.Assign(ctx, repository.AssignParams{
		SiteID:            req.SiteID,
		Date:              date,
		ShiftCode:         req.ShiftCode,
		GuardID:           guard.ID,
		GuardName:         guard.FullName(),
		Position:          rate.PositionName,
		Rate:              rate,
		PositionAllowance: req.PositionAllowance,
		OtherAllowance:    req.OtherAllowance,
		ActorID:           actorID(claims),
	})
	if err != nil {
		return nil, s.mapLedgerError(err, "shift slot not found")
	}

	s.afterCommit(ctx, models.AuditActionCreate, req.SiteID, req.Date, claims, nil, assignment)
	s.logger.Info("guard assigned",
		zap.String("guard_id", guard.ID),
		zap.String("site_id", req.SiteID),
		zap.String("date", req.Date),
		zap.String("shift_code", req.ShiftCode))
	return assignment, nil
}

// Unassign removes a committed assignment and returns the removed snapshot.
func (s *RosterService) Unassign(ctx context.Context, req dto.UnassignRequest, claims *models.JWTClaims) (*models.Assignment, error) {
	if err := requireScheduler(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unassign payload")
	}
	date, err := parseRosterDate(req.Date)
	if err != nil {
		return nil, err
	}

	removed, err := s.ledger.Unassign(ctx, req.SiteID, date, req.ShiftCode, req.GuardID)
	if err != nil {
		return nil, s.mapLedgerError(err, "assignment not found")
	}

	s.afterCommit(ctx, models.AuditActionDelete, req.SiteID, req.Date, claims, removed, nil)
	s.logger.Info("guard unassigned",
		zap.String("guard_id", req.GuardID),
		zap.String("site_id", req.SiteID),
		zap.String("date", req.Date),
		zap.String("shift_code", req.ShiftCode))
	return removed, nil
}

// Move transfers a guard between two slots of the same site and date in one
// step. The frozen components travel with the assignment.
func (s *RosterService) Move(ctx context.Context, req dto.MoveRequest, claims *models.JWTClaims) (*models.Assignment, error) {
	if err := requireScheduler(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}
	date, err := parseRosterDate(req.Date)
	if err != nil {
		return nil, err
	}

	before := &models.Assignment{GuardID: req.GuardID, SiteID: req.SiteID, ShiftCode: req.FromShiftCode}
	moved, err := s.ledger.Move(ctx, req.SiteID, date, req.GuardID, req.FromShiftCode, req.ToShiftCode)
	if err != nil {
		return nil, s.mapLedgerError(err, "assignment not found")
	}

	s.afterCommit(ctx, models.AuditActionUpdate, req.SiteID, req.Date, claims, before, moved)
	s.logger.Info("guard moved",
		zap.String("guard_id", req.GuardID),
		zap.String("site_id", req.SiteID),
		zap.String("date", req.Date),
		zap.String("from", req.FromShiftCode),
		zap.String("to", req.ToShiftCode))
	return moved, nil
}

// Replace swaps the full day's roster for one site, all-or-nothing. Unknown
// guards and positions are collected alongside the ledger's capacity and
// double-booking findings so the editor sees every violation at once.
func (s *RosterService) Replace(ctx context.Context, req dto.ReplaceScheduleRequest, claims *models.JWTClaims) (*models.ScheduleDetail, error) {
	if err := requireScheduler(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	date, err := parseRosterDate(req.Date)
	if err != nil {
		return nil, err
	}
	site, err := s.ensureSite(ctx, req.SiteID)
	if err != nil {
		return nil, err
	}

	violations := make([]interface{}, 0)
	shifts := make(map[string][]repository.ReplaceEntry, len(req.Shifts))
	for shiftCode, entries := range req.Shifts {
		resolved := make([]repository.ReplaceEntry, 0, len(entries))
		for _, entry := range entries {
			guard, err := s.guards.GetByID(ctx, entry.GuardID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					violations = append(violations, map[string]string{
						"guard_id":   entry.GuardID,
						"shift_code": shiftCode,
						"reason":     "guard not found",
					})
					continue
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load guard")
			}
			if !guard.Active {
				violations = append(violations, map[string]string{
					"guard_id":   entry.GuardID,
					"shift_code": shiftCode,
					"reason":     "guard is inactive",
				})
				continue
			}
			rate, err := s.rates.Resolve(ctx, req.SiteID, entry.PositionID)
			if err != nil {
				var appErr *appErrors.Error
				if errors.As(err, &appErr) && appErr.Code != appErrors.ErrInternal.Code {
					violations = append(violations, map[string]string{
						"guard_id":    entry.GuardID,
						"position_id": entry.PositionID,
						"shift_code":  shiftCode,
						"reason":      appErr.Message,
					})
					continue
				}
				return nil, err
			}
			resolved = append(resolved, repository.ReplaceEntry{
				GuardID:           guard.ID,
				GuardName:         guard.FullName(),
				Position:          rate.PositionName,
				Rate:              rate,
				PositionAllowance: entry.PositionAllowance,
				OtherAllowance:    entry.OtherAllowance,
			})
		}
		shifts[shiftCode] = resolved
	}
	if len(violations) > 0 {
		return nil, wrapConflict(&models.ReplaceValidationError{SiteID: req.SiteID, Date: req.Date, Errors: violations})
	}

	before, after, err := s.ledger.Replace(ctx, repository.ReplaceParams{
		SiteID:  req.SiteID,
		Date:    date,
		Shifts:  shifts,
		ActorID: actorID(claims),
	})
	if err != nil {
		return nil, s.mapLedgerError(err, "schedule not found")
	}

	s.afterCommit(ctx, models.AuditActionUpdate, req.SiteID, req.Date, claims, before, after)
	s.logger.Info("schedule replaced",
		zap.String("site_id", req.SiteID),
		zap.String("date", req.Date),
		zap.Int("removed", len(before)),
		zap.Int("committed", len(after)))

	detail := &models.ScheduleDetail{
		Schedule: models.Schedule{SiteID: req.SiteID, ScheduleDate: date},
		SiteName: site.Name,
		Shifts:   groupByShift(after),
	}
	if len(after) > 0 {
		detail.ID = after[0].ScheduleID
	}
	return detail, nil
}

// GetSchedule returns the committed roster for one (site, date).
func (s *RosterService) GetSchedule(ctx context.Context, siteID, rawDate string) (*models.ScheduleDetail, error) {
	date, err := parseRosterDate(rawDate)
	if err != nil {
		return nil, err
	}
	site, err := s.ensureSite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.ledger.ListAssignments(ctx, siteID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	detail := &models.ScheduleDetail{
		Schedule: models.Schedule{SiteID: siteID, ScheduleDate: date},
		SiteName: site.Name,
		Shifts:   groupByShift(assignments),
	}
	if len(assignments) > 0 {
		detail.ID = assignments[0].ScheduleID
	}
	return detail, nil
}

// Index returns the calendar projection for the range, cached briefly since
// planners poll it.
func (s *RosterService) Index(ctx context.Context, query dto.ScheduleIndexQuery) (models.ScheduleIndex, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid index query")
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
	if end.Sub(start) > maxIndexRangeDays*24*time.Hour {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date range exceeds %d days", maxIndexRangeDays))
	}

	cacheKey := fmt.Sprintf("%s%s:%s", indexCachePrefix, query.StartDate, query.EndDate)
	if s.cache != nil {
		var cached models.ScheduleIndex
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := s.ledger.Index(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build schedule index")
	}

	index := make(models.ScheduleIndex)
	for _, row := range rows {
		day := row.ScheduleDate.Format(models.DateFormat)
		sites, ok := index[day]
		if !ok {
			sites = make(map[string]models.ScheduleIndexEntry)
			index[day] = sites
		}
		entry, ok := sites[row.SiteID]
		if !ok {
			entry = models.ScheduleIndexEntry{
				ScheduleID: row.ScheduleID,
				SiteID:     row.SiteID,
				SiteName:   row.SiteName,
				ByShift:    make(map[string]int),
			}
		}
		entry.ByShift[row.ShiftCode] += row.GuardCount
		entry.TotalGuards += row.GuardCount
		sites[row.SiteID] = entry
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, index, s.indexTTL); err != nil {
			s.logger.Warn("failed to cache schedule index", zap.Error(err))
		}
	}
	return index, nil
}

// List returns schedule summaries with pagination metadata.
func (s *RosterService) List(ctx context.Context, query dto.ScheduleListQuery) ([]models.ScheduleListItem, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid list query")
	}
	filter := repository.ScheduleListFilter{SiteID: query.SiteID}
	if query.StartDate != "" {
		start, err := parseRosterDate(query.StartDate)
		if err != nil {
			return nil, nil, err
		}
		filter.Start = &start
	}
	if query.EndDate != "" {
		end, err := parseRosterDate(query.EndDate)
		if err != nil {
			return nil, nil, err
		}
		filter.End = &end
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	items, total, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return items, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// AvailableGuards lists active guards with no assignment anywhere on the date.
func (s *RosterService) AvailableGuards(ctx context.Context, rawDate string) ([]models.Guard, error) {
	date, err := parseRosterDate(rawDate)
	if err != nil {
		return nil, err
	}
	guards, err := s.guards.ListAvailableOn(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available guards")
	}
	return guards, nil
}

func (s *RosterService) ensureGuard(ctx context.Context, guardID string) (*models.Guard, error) {
	guard, err := s.guards.GetByID(ctx, guardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "guard not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load guard")
	}
	if !guard.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "guard is inactive")
	}
	return guard, nil
}

func (s *RosterService) ensureSite(ctx context.Context, siteID string) (*models.Site, error) {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "site not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site")
	}
	return site, nil
}

func (s *RosterService) ensureSiteActive(ctx context.Context, siteID string) error {
	site, err := s.ensureSite(ctx, siteID)
	if err != nil {
		return err
	}
	if !site.Active {
		return appErrors.Clone(appErrors.ErrValidation, "site is inactive")
	}
	return nil
}

// mapLedgerError translates ledger failures into API errors. Conflict types
// ride along as the wrapped cause so the response keeps their structured
// detail while the envelope carries the matching 409 code.
func (s *RosterService) mapLedgerError(err error, notFoundMessage string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMessage)
	}
	if wrapped := wrapConflict(err); wrapped != nil {
		return wrapped
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "schedule commit failed")
}

// wrapConflict pairs each domain conflict type with its API sentinel.
func wrapConflict(err error) *appErrors.Error {
	var (
		booked   *models.DoubleBookingError
		full     *models.CapacityError
		locked   *models.SlotLockedError
		rejected *models.ReplaceValidationError
	)
	switch {
	case errors.As(err, &booked):
		return appErrors.Wrap(err, appErrors.ErrDoubleBooked.Code, appErrors.ErrDoubleBooked.Status, booked.Error())
	case errors.As(err, &full):
		return appErrors.Wrap(err, appErrors.ErrCapacityExceeded.Code, appErrors.ErrCapacityExceeded.Status, full.Error())
	case errors.As(err, &locked):
		return appErrors.Wrap(err, appErrors.ErrSlotLocked.Code, appErrors.ErrSlotLocked.Status, locked.Error())
	case errors.As(err, &rejected):
		return appErrors.Wrap(err, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, rejected.Error())
	}
	return nil
}

// afterCommit invalidates cached projections and hands a change fact to the
// audit sink. Both are best-effort: the ledger transaction already committed.
func (s *RosterService) afterCommit(ctx context.Context, action models.AuditAction, siteID, date string, claims *models.JWTClaims, before, after interface{}) {
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, indexCachePrefix+"*"); err != nil {
			s.logger.Warn("failed to invalidate schedule index cache", zap.Error(err))
		}
		if err := s.cache.DeleteByPattern(ctx, historyCachePrefix+"*"); err != nil {
			s.logger.Warn("failed to invalidate work history cache", zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordAssignmentChange(string(action))
	}
	if s.audit == nil {
		return
	}
	fact := models.ChangeFact{
		Action:     action,
		EntityType: scheduleEntityType,
		EntityID:   siteID + ":" + date,
		ActorID:    actorID(claims),
	}
	if before != nil {
		if payload, err := json.Marshal(before); err == nil {
			fact.Before = payload
		}
	}
	if after != nil {
		if payload, err := json.Marshal(after); err == nil {
			fact.After = payload
		}
	}
	s.audit.Record(fact)
}

func groupByShift(assignments []models.Assignment) map[string][]models.Assignment {
	grouped := make(map[string][]models.Assignment)
	for _, assignment := range assignments {
		grouped[assignment.ShiftCode] = append(grouped[assignment.ShiftCode], assignment)
	}
	return grouped
}

func parseRosterDate(value string) (time.Time, error) {
	date, err := time.Parse(models.DateFormat, value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return date, nil
}

func actorID(claims *models.JWTClaims) *string {
	if claims == nil || claims.UserID == "" {
		return nil
	}
	id := claims.UserID
	return &id
}

// requireScheduler gates mutating roster operations to scheduling roles.
func requireScheduler(claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	switch claims.Role {
	case models.RoleAdmin, models.RoleScheduler:
		return nil
	default:
		return appErrors.ErrForbidden
	}
}
