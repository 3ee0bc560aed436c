package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/listenupapp/recipebox-server/internal/domain"
	"github.com/listenupapp/recipebox-server/internal/store"
	"github.com/listenupapp/recipebox-server/internal/validation"
)

// LabelService handles direct tag and ingredient CRUD. Every operation is
// scoped to the caller's own labels.
//
// Direct creation bypasses the reconciler: posting the same name twice
// yields two labels.
type LabelService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewLabelService creates a new label service.
func NewLabelService(st store.Store, validator *validation.Validator, logger *slog.Logger) *LabelService {
	return &LabelService{
		store:     st,
		validator: validator,
		logger:    logger,
	}
}

type tagName struct {
	Name string `json:"tag_name" validate:"notblank,maxrunes=100"`
}

type ingredientName struct {
	Name string `json:"ingredient_name" validate:"notblank,maxrunes=100"`
}

// validateName reports violations under the field name the API uses for kind.
func (s *LabelService) validateName(kind domain.LabelKind, name string) error {
	if kind == domain.LabelIngredient {
		return s.validator.Validate(ingredientName{Name: name})
	}
	return s.validator.Validate(tagName{Name: name})
}

// List returns the principal's labels of kind ordered by ID.
func (s *LabelService) List(ctx context.Context, principal domain.Principal, kind domain.LabelKind) ([]*domain.Label, error) {
	if !principal.Authenticated {
		return nil, errUnauthenticated
	}
	labels, err := s.store.ListLabels(ctx, kind, principal.UserID)
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// Create inserts a new label owned by the principal.
func (s *LabelService) Create(ctx context.Context, principal domain.Principal, kind domain.LabelKind, name string) (*domain.Label, error) {
	if err := Authorize(principal, SurfaceLabels, nil, OpCreate); err != nil {
		return nil, err
	}
	if err := s.validateName(kind, name); err != nil {
		return nil, err
	}

	label := &domain.Label{Kind: kind, OwnerID: principal.UserID, Name: name}
	label.InitTimestamps()
	if err := s.store.CreateLabel(ctx, label); err != nil {
		return nil, translateStoreError(err, kind.String())
	}

	s.logger.Info("label created",
		"kind", kind,
		"label_id", label.ID,
		"user_id", principal.UserID,
	)
	return label, nil
}

// Get returns one of the principal's labels.
func (s *LabelService) Get(ctx context.Context, principal domain.Principal, kind domain.LabelKind, labelID int64) (*domain.Label, error) {
	return s.load(ctx, principal, kind, labelID, OpRead)
}

// Update renames one of the principal's labels. A nil name leaves it as is.
func (s *LabelService) Update(ctx context.Context, principal domain.Principal, kind domain.LabelKind, labelID int64, name *string) (*domain.Label, error) {
	label, err := s.load(ctx, principal, kind, labelID, OpUpdate)
	if err != nil {
		return nil, err
	}
	if name == nil {
		return label, nil
	}
	if err := s.validateName(kind, *name); err != nil {
		return nil, err
	}

	label.Name = *name
	label.OwnerID = principal.UserID
	label.Touch()
	if err := s.store.UpdateLabel(ctx, label); err != nil {
		return nil, translateStoreError(err, kind.String())
	}

	s.logger.Info("label updated",
		"kind", kind,
		"label_id", labelID,
		"user_id", principal.UserID,
	)
	return label, nil
}

// Delete removes one of the principal's labels and its recipe links.
func (s *LabelService) Delete(ctx context.Context, principal domain.Principal, kind domain.LabelKind, labelID int64) error {
	if _, err := s.load(ctx, principal, kind, labelID, OpDelete); err != nil {
		return err
	}
	if err := s.store.DeleteLabel(ctx, kind, labelID); err != nil {
		return translateStoreError(err, kind.String())
	}

	s.logger.Info("label deleted",
		"kind", kind,
		"label_id", labelID,
		"user_id", principal.UserID,
	)
	return nil
}

func (s *LabelService) load(ctx context.Context, principal domain.Principal, kind domain.LabelKind, labelID int64, op Op) (*domain.Label, error) {
	if !principal.Authenticated {
		return nil, errUnauthenticated
	}
	label, err := s.store.GetLabel(ctx, kind, labelID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err := Authorize(principal, SurfaceLabels, label, op); err != nil {
		return nil, err
	}
	return label, nil
}
