package wishlist

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/internal/deals"
	"github.com/angelmondragon/dealtracker-backend/internal/users"
	"github.com/angelmondragon/dealtracker-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
	"github.com/angelmondragon/dealtracker-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealtracker-backend/pkg/errors"
)

type fixture struct {
	svc  Service
	conn *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		WishlistRepo: NewRepository(conn),
		UserRepo:     users.NewRepository(conn),
		DealRepo:     deals.NewRepository(conn),
	})
	require.NoError(t, err)
	return fixture{svc: svc, conn: conn}
}

func (f fixture) user(t *testing.T, subscriber bool) uuid.UUID {
	t.Helper()
	name := uuid.NewString()[:8]
	u := models.User{Name: "user " + name, Username: name, Email: name + "@example.com", PasswordHash: "x", IsSubscriber: subscriber}
	require.NoError(t, f.conn.Create(&u).Error)
	return u.ID
}

func (f fixture) deal(t *testing.T, price string, mutate func(*models.Deal)) uuid.UUID {
	t.Helper()
	d := models.Deal{Title: "deal " + price, Price: decimal.RequireFromString(price), CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if mutate != nil {
		mutate(&d)
	}
	require.NoError(t, f.conn.Create(&d).Error)
	return d.ID
}

func (f fixture) row(t *testing.T, userID, dealID uuid.UUID) models.WishlistItem {
	t.Helper()
	var item models.WishlistItem
	require.NoError(t, f.conn.Where("user_id = ? AND deal_id = ?", userID, dealID).First(&item).Error)
	return item
}

func boolPtr(v bool) *bool { return &v }

func TestAddSeedsSavedPriceFromDeal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, false)
	dealID := f.deal(t, "49.99", nil)

	res, err := f.svc.Add(ctx, userID, AddItemRequest{DealID: dealID})
	require.NoError(t, err)
	require.Equal(t, OutcomeAdded, res.Outcome)
	require.Equal(t, "added to wishlist", res.Outcome.Message())
	require.NotNil(t, res.Item.SavedPrice)
	require.Equal(t, "49.99", *res.Item.SavedPrice)
	require.Equal(t, "49.99", res.Item.BestPrice)
	require.Equal(t, enums.DealStatusAvailable, res.Item.Status)
	require.False(t, res.Item.AlertEnabled)

	again, err := f.svc.Add(ctx, userID, AddItemRequest{DealID: dealID, AlertEnabled: boolPtr(false)})
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyPresent, again.Outcome)
}

func TestAddAlertRequiresSubscriber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dealID := f.deal(t, "10", nil)

	_, err := f.svc.Add(ctx, f.user(t, false), AddItemRequest{DealID: dealID, AlertEnabled: boolPtr(true)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	require.Equal(t, "only subscribers can enable deal alerts", pkgerrors.As(err).Message())

	res, err := f.svc.Add(ctx, f.user(t, true), AddItemRequest{DealID: dealID, AlertEnabled: boolPtr(true)})
	require.NoError(t, err)
	require.True(t, res.Item.AlertEnabled)
}

func TestAddRejectsMissingAndUnavailableDeals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, true)

	_, err := f.svc.Add(ctx, userID, AddItemRequest{DealID: uuid.New()})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	expired := f.deal(t, "5", func(d *models.Deal) { d.IsExpired = true })
	_, err = f.svc.Add(ctx, userID, AddItemRequest{DealID: expired})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	disabled := f.deal(t, "5", func(d *models.Deal) { d.IsDisabled = true })
	_, err = f.svc.Add(ctx, userID, AddItemRequest{DealID: disabled})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Add(ctx, userID, AddItemRequest{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAddTogglesAlertAndSeedsNullBaseline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, true)
	dealID := f.deal(t, "30", nil)

	legacy := models.WishlistItem{UserID: userID, DealID: dealID}
	require.NoError(t, f.conn.Create(&legacy).Error)
	require.False(t, f.row(t, userID, dealID).SavedPrice.Valid)

	res, err := f.svc.Add(ctx, userID, AddItemRequest{DealID: dealID, AlertEnabled: boolPtr(true)})
	require.NoError(t, err)
	require.Equal(t, OutcomeAlertUpdated, res.Outcome)
	require.Equal(t, "wishlist alert setting updated", res.Outcome.Message())

	row := f.row(t, userID, dealID)
	require.True(t, row.AlertEnabled)
	require.True(t, row.SavedPrice.Valid)
	require.True(t, row.SavedPrice.Decimal.Equal(decimal.RequireFromString("30")))

	require.NoError(t, f.conn.Model(&models.Deal{}).Where("id = ?", dealID).Update("price", decimal.RequireFromString("25")).Error)
	res, err = f.svc.Add(ctx, userID, AddItemRequest{DealID: dealID, AlertEnabled: boolPtr(false)})
	require.NoError(t, err)
	require.Equal(t, OutcomeAlertUpdated, res.Outcome)

	row = f.row(t, userID, dealID)
	require.False(t, row.AlertEnabled)
	require.True(t, row.SavedPrice.Decimal.Equal(decimal.RequireFromString("30")), "disabling must not touch the baseline")
}

func TestAddWithoutAlertFlagKeepsExistingSetting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, true)
	dealID := f.deal(t, "80", nil)

	_, err := f.svc.Add(ctx, userID, AddItemRequest{DealID: dealID, AlertEnabled: boolPtr(true)})
	require.NoError(t, err)

	res, err := f.svc.Add(ctx, userID, AddItemRequest{DealID: dealID})
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyPresent, res.Outcome)
	require.True(t, res.Item.AlertEnabled)
	require.True(t, f.row(t, userID, dealID).AlertEnabled)
}

func TestListAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, false)
	other := f.user(t, false)
	first := f.deal(t, "10", nil)
	second := f.deal(t, "20", nil)

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.conn.Create(&models.WishlistItem{UserID: userID, DealID: first, CreatedAt: base}).Error)
	require.NoError(t, f.conn.Create(&models.WishlistItem{UserID: userID, DealID: second, CreatedAt: base.Add(time.Minute)}).Error)
	require.NoError(t, f.conn.Create(&models.WishlistItem{UserID: other, DealID: first, CreatedAt: base}).Error)
	require.NoError(t, f.conn.Model(&models.Deal{}).Where("id = ?", first).Update("is_disabled", true).Error)

	items, err := f.svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, second, items[0].DealID)
	require.Equal(t, first, items[1].DealID)
	require.Equal(t, enums.DealStatusDisabled, items[1].Status)
	require.Equal(t, "10.00", items[1].BestPrice)

	require.NoError(t, f.svc.Remove(ctx, userID, first))
	err = f.svc.Remove(ctx, userID, first)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	items, err = f.svc.List(ctx, other)
	require.NoError(t, err)
	require.Len(t, items, 1)
}
