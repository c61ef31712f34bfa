package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/pkg/db"
	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dealtracker-backend/pkg/errors"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
)

// Service exposes business rules for wishlist management.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]WishlistItemDTO, error)
	Add(ctx context.Context, userID uuid.UUID, req AddItemRequest) (AddResult, error)
	Remove(ctx context.Context, userID, dealID uuid.UUID) error
}

type wishlistRepository interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]itemRecord, error)
	FindItem(ctx context.Context, userID, dealID uuid.UUID) (*itemRecord, error)
	FindByUserAndDeal(ctx context.Context, userID, dealID uuid.UUID) (*models.WishlistItem, error)
	Create(ctx context.Context, item *models.WishlistItem) error
	UpdateAlert(ctx context.Context, id uuid.UUID, enabled bool, seed *decimal.Decimal) error
	Delete(ctx context.Context, userID, dealID uuid.UUID) (bool, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type dealLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo wishlistRepository
	UserRepo     userLookup
	DealRepo     dealLookup
	Logger       *logger.Logger
}

type service struct {
	wishlist wishlistRepository
	users    userLookup
	deals    dealLookup
	logg     *logger.Logger
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, fmt.Errorf("wishlist repo is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repo is required")
	}
	if params.DealRepo == nil {
		return nil, fmt.Errorf("deal repo is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		wishlist: params.WishlistRepo,
		users:    params.UserRepo,
		deals:    params.DealRepo,
		logg:     logg,
	}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]WishlistItemDTO, error) {
	records, err := s.wishlist.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist")
	}
	items := make([]WishlistItemDTO, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDTO())
	}
	return items, nil
}

// Add saves a deal for the user. New rows take the deal's current price as the alert baseline.
// An omitted alert_enabled means off for new rows and leaves existing rows untouched.
func (s *service) Add(ctx context.Context, userID uuid.UUID, req AddItemRequest) (AddResult, error) {
	if req.DealID == uuid.Nil {
		return AddResult{}, pkgerrors.New(pkgerrors.CodeValidation, "deal_id is required")
	}
	wantAlert := req.AlertEnabled != nil && *req.AlertEnabled

	if wantAlert {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return AddResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user no longer exists")
			}
			return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
		}
		if !user.IsSubscriber {
			return AddResult{}, pkgerrors.New(pkgerrors.CodeForbidden, "only subscribers can enable deal alerts")
		}
	}

	deal, err := s.deals.FindByID(ctx, req.DealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "deal not found")
		}
		return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load deal")
	}
	if deal.IsExpired || deal.IsDisabled {
		return AddResult{}, pkgerrors.New(pkgerrors.CodeValidation, "deal is no longer available")
	}

	existing, err := s.wishlist.FindByUserAndDeal(ctx, userID, deal.ID)
	switch {
	case err == nil:
		return s.updateExisting(ctx, userID, deal, existing, req.AlertEnabled)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist item")
	}

	item := &models.WishlistItem{
		UserID:       userID,
		DealID:       deal.ID,
		AlertEnabled: wantAlert,
		SavedPrice:   decimal.NewNullDecimal(deal.Price),
	}
	if err := s.wishlist.Create(ctx, item); err != nil {
		if db.IsUniqueViolation(err, "") {
			existing, findErr := s.wishlist.FindByUserAndDeal(ctx, userID, deal.ID)
			if findErr != nil {
				return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "reload wishlist item")
			}
			return s.updateExisting(ctx, userID, deal, existing, req.AlertEnabled)
		}
		return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add wishlist item")
	}

	s.track(ctx, "wishlist.added", userID, deal.ID, wantAlert)
	return s.result(ctx, OutcomeAdded, userID, deal.ID)
}

func (s *service) updateExisting(ctx context.Context, userID uuid.UUID, deal *models.Deal, existing *models.WishlistItem, alert *bool) (AddResult, error) {
	if alert == nil || existing.AlertEnabled == *alert {
		return s.result(ctx, OutcomeAlreadyPresent, userID, deal.ID)
	}
	wantAlert := *alert
	var seed *decimal.Decimal
	if wantAlert {
		price := deal.Price
		seed = &price
	}
	if err := s.wishlist.UpdateAlert(ctx, existing.ID, wantAlert, seed); err != nil {
		return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update wishlist alert")
	}
	return s.result(ctx, OutcomeAlertUpdated, userID, deal.ID)
}

func (s *service) result(ctx context.Context, outcome AddOutcome, userID, dealID uuid.UUID) (AddResult, error) {
	record, err := s.wishlist.FindItem(ctx, userID, dealID)
	if err != nil {
		return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist item")
	}
	return AddResult{Outcome: outcome, Item: record.toDTO()}, nil
}

func (s *service) Remove(ctx context.Context, userID, dealID uuid.UUID) error {
	removed, err := s.wishlist.Delete(ctx, userID, dealID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove wishlist item")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in wishlist")
	}
	s.track(ctx, "wishlist.removed", userID, dealID, false)
	return nil
}

func (s *service) track(ctx context.Context, event string, userID, dealID uuid.UUID, alert bool) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"event":         event,
		"user_id":       userID.String(),
		"deal_id":       dealID.String(),
		"alert_enabled": alert,
	})
	s.logg.Info(ctx, event)
}
