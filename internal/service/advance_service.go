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

type advanceStore interface {
	Create(ctx context.Context, doc *models.DailyAdvance) error
	GetByID(ctx context.Context, id string) (*models.DailyAdvance, error)
	List(ctx context.Context, filter repository.AdvanceListFilter) ([]models.DailyAdvance, error)
	Update(ctx context.Context, id string, params repository.UpdateAdvanceParams) error
	UpdateStatus(ctx context.Context, id string, status models.AdvanceStatus, approvedBy *string) error
	Delete(ctx context.Context, id string) error
}

type advanceGuardReader interface {
	GetByID(ctx context.Context, id string) (*models.Guard, error)
}

// AdvanceService manages advance and cash payment documents. Non-admins only
// ever see and edit their own documents; recording an Approved or Rejected
// verdict is an admin action and stamps the approver.
type AdvanceService struct {
	advances  advanceStore
	guards    advanceGuardReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdvanceService builds an AdvanceService with sane defaults.
func NewAdvanceService(advances advanceStore, guards advanceGuardReader, validate *validator.Validate, logger *zap.Logger) *AdvanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdvanceService{advances: advances, guards: guards, validator: validate, logger: logger}
}

// List returns documents matching the query. Non-admin callers only see
// documents they created.
func (s *AdvanceService) List(ctx context.Context, query dto.AdvanceListQuery, claims *models.JWTClaims) ([]dto.AdvanceResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := repository.AdvanceListFilter{}
	if query.Date != "" {
		date, err := parseRosterDate(query.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		filter.Date = &date
	}
	if query.Type != "" {
		kind := models.AdvanceType(query.Type)
		if !kind.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "type must be advance or cash")
		}
		filter.Type = kind
	}
	if claims.Role != models.RoleAdmin {
		filter.CreatedBy = claims.UserID
	}

	docs, err := s.advances.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list advance documents")
	}
	responses := make([]dto.AdvanceResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, dto.AdvanceResponse{DailyAdvance: doc, TotalAmount: doc.Items.Total()})
	}
	return responses, nil
}

// Get returns one document, refusing callers who neither own it nor hold the
// admin role.
func (s *AdvanceService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*dto.AdvanceResponse, error) {
	doc, err := s.loadOwned(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	return &dto.AdvanceResponse{DailyAdvance: *doc, TotalAmount: doc.Items.Total()}, nil
}

// Create opens a new document owned by the caller.
func (s *AdvanceService) Create(ctx context.Context, req dto.CreateAdvanceRequest, claims *models.JWTClaims) (*dto.AdvanceResponse, error) {
	if err := requireScheduler(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid advance payload")
	}
	date, err := parseRosterDate(req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.AdvanceStatusDraft
	}
	doc := &models.DailyAdvance{
		DocNumber: req.DocNumber,
		Date:      date,
		Type:      req.Type,
		Status:    status,
		Items:     items,
		CreatedBy: claims.UserID,
	}
	if err := s.advances.Create(ctx, doc); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create advance document")
	}
	s.logger.Info("advance document created",
		zap.String("doc_number", doc.DocNumber),
		zap.String("type", string(doc.Type)),
		zap.String("created_by", doc.CreatedBy))
	return &dto.AdvanceResponse{DailyAdvance: *doc, TotalAmount: items.Total()}, nil
}

// Update edits a document. Approved and rejected documents are frozen.
func (s *AdvanceService) Update(ctx context.Context, id string, req dto.UpdateAdvanceRequest, claims *models.JWTClaims) (*dto.AdvanceResponse, error) {
	doc, err := s.loadOwned(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	if doc.Status == models.AdvanceStatusApproved || doc.Status == models.AdvanceStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "document already has a verdict")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid advance payload")
	}

	params := repository.UpdateAdvanceParams{DocNumber: req.DocNumber}
	if req.Date != nil {
		date, err := parseRosterDate(*req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		params.Date = &date
	}
	if req.Type != nil {
		kind := models.AdvanceType(*req.Type)
		if !kind.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "type must be advance or cash")
		}
		params.Type = &kind
	}
	if req.Items != nil {
		items, err := s.resolveItems(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		params.Items = items
	}

	if err := s.advances.Update(ctx, id, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "advance document not found")
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update advance document")
	}
	return s.Get(ctx, id, claims)
}

// UpdateStatus moves a document through its workflow. Recording Approved or
// Rejected requires the admin role and stamps the approver; draft and pending
// moves stay with the owner.
func (s *AdvanceService) UpdateStatus(ctx context.Context, id string, req dto.AdvanceStatusRequest, claims *models.JWTClaims) (*dto.AdvanceResponse, error) {
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Draft, Pending, Approved or Rejected")
	}
	doc, err := s.loadOwned(ctx, id, claims)
	if err != nil {
		return nil, err
	}

	var approvedBy *string
	if req.Status == models.AdvanceStatusApproved || req.Status == models.AdvanceStatusRejected {
		if claims.Role != models.RoleAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can record a verdict")
		}
		approver := claims.UserID
		approvedBy = &approver
	}

	if err := s.advances.UpdateStatus(ctx, id, req.Status, approvedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "advance document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update advance status")
	}
	s.logger.Info("advance status updated",
		zap.String("doc_number", doc.DocNumber),
		zap.String("status", string(req.Status)))
	return s.Get(ctx, id, claims)
}

// Delete removes a document.
func (s *AdvanceService) Delete(ctx context.Context, id string, claims *models.JWTClaims) error {
	if _, err := s.loadOwned(ctx, id, claims); err != nil {
		return err
	}
	if err := s.advances.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "advance document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete advance document")
	}
	return nil
}

// loadOwned fetches a document and enforces the owner-or-admin rule.
func (s *AdvanceService) loadOwned(ctx context.Context, id string, claims *models.JWTClaims) (*models.DailyAdvance, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	doc, err := s.advances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "advance document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advance document")
	}
	if claims.Role != models.RoleAdmin && doc.CreatedBy != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "document belongs to another user")
	}
	return doc, nil
}

// resolveItems validates every line against the guard registry.
func (s *AdvanceService) resolveItems(ctx context.Context, lines []dto.AdvanceItemRequest) (models.AdvanceItems, error) {
	items := make(models.AdvanceItems, 0, len(lines))
	for _, line := range lines {
		guard, err := s.guards.GetByID(ctx, line.GuardID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "guard "+line.GuardID+" not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load guard")
		}
		if !guard.Active {
			return nil, appErrors.Clone(appErrors.ErrValidation, "guard "+guard.GuardCode+" is inactive")
		}
		items = append(items, models.AdvanceItem{GuardID: line.GuardID, Amount: line.Amount, Reason: line.Reason})
	}
	return items, nil
}
