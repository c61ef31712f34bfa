package deals

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dealtracker-backend/pkg/errors"
	"github.com/angelmondragon/dealtracker-backend/pkg/pagination"
)

// Service exposes the deal catalogue to controllers and the admin CLI.
type Service interface {
	List(ctx context.Context, limit int, cursor string) (DealsPageDTO, error)
	Get(ctx context.Context, id uuid.UUID) (DealDTO, error)
	Create(ctx context.Context, input CreateDealInput) (DealDTO, error)
	SetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
	SetExpired(ctx context.Context, id uuid.UUID, expired bool) error
	SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error
}

type dealRepository interface {
	List(ctx context.Context, params pagination.Params) ([]models.Deal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	Create(ctx context.Context, deal *models.Deal) error
	UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
	SetExpired(ctx context.Context, id uuid.UUID, expired bool) error
	SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error
}

type service struct {
	repo dealRepository
}

// NewService builds a deals service.
func NewService(repo dealRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deal repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, limit int, cursor string) (DealsPageDTO, error) {
	decoded, err := pagination.ParseCursor(cursor)
	if err != nil {
		return DealsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	normalized := pagination.NormalizeLimit(limit, DefaultListLimit)
	rows, err := s.repo.List(ctx, pagination.Params{Limit: normalized, Cursor: decoded})
	if err != nil {
		return DealsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list deals")
	}

	page, next := pagination.Trim(rows, normalized, func(d models.Deal) pagination.Cursor {
		return pagination.Cursor{CreatedAt: d.CreatedAt, ID: d.ID}
	})
	out := DealsPageDTO{Deals: make([]DealDTO, 0, len(page)), NextCursor: next}
	for _, d := range page {
		out.Deals = append(out.Deals, FromModel(d))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (DealDTO, error) {
	deal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DealDTO{}, mapLookupError(err)
	}
	return FromModel(*deal), nil
}

func (s *service) Create(ctx context.Context, input CreateDealInput) (DealDTO, error) {
	if input.Title == "" {
		return DealDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Price.IsNegative() {
		return DealDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	deal := input.toModel()
	if err := s.repo.Create(ctx, deal); err != nil {
		return DealDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create deal")
	}
	return FromModel(*deal), nil
}

func (s *service) SetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return mapLookupError(s.repo.UpdatePrice(ctx, id, price.Round(2)))
}

func (s *service) SetExpired(ctx context.Context, id uuid.UUID, expired bool) error {
	return mapLookupError(s.repo.SetExpired(ctx, id, expired))
}

func (s *service) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	return mapLookupError(s.repo.SetDisabled(ctx, id, disabled))
}

func mapLookupError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "deal not found")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load deal")
	}
}
