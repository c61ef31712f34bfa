package deals

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
	"github.com/angelmondragon/dealtracker-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealtracker-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func insertDeal(t *testing.T, conn *gorm.DB, title string, price string, createdAt time.Time) models.Deal {
	t.Helper()
	deal := models.Deal{
		Title:     title,
		Price:     decimal.RequireFromString(price),
		CreatedAt: createdAt,
	}
	require.NoError(t, conn.Create(&deal).Error)
	return deal
}

func TestListNewestFirstWithCursor(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	oldest := insertDeal(t, conn, "oldest", "10.00", base)
	middle := insertDeal(t, conn, "middle", "20.00", base.Add(time.Hour))
	newest := insertDeal(t, conn, "newest", "30.00", base.Add(2*time.Hour))

	page, err := svc.List(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, page.Deals, 2)
	require.Equal(t, newest.ID, page.Deals[0].ID)
	require.Equal(t, middle.ID, page.Deals[1].ID)
	require.NotEmpty(t, page.NextCursor)

	next, err := svc.List(ctx, 2, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, next.Deals, 1)
	require.Equal(t, oldest.ID, next.Deals[0].ID)
	require.Empty(t, next.NextCursor)

	_, err = svc.List(ctx, 2, "not-a-cursor")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetRendersStatusAndPrices(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	deal := insertDeal(t, conn, "desk", "199.5", time.Now().UTC())
	require.NoError(t, svc.SetExpired(ctx, deal.ID, true))

	dto, err := svc.Get(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, "199.50", dto.Price)
	require.Equal(t, "USD", dto.Currency)
	require.Equal(t, enums.DealStatusExpired, dto.Status)

	require.NoError(t, svc.SetDisabled(ctx, deal.ID, true))
	dto, err = svc.Get(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, enums.DealStatusDisabled, dto.Status)

	_, err = svc.Get(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateAndSetPrice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	original := decimal.RequireFromString("120")
	created, err := svc.Create(ctx, CreateDealInput{
		Title:         "  Monitor ",
		Price:         decimal.RequireFromString("99.999"),
		OriginalPrice: &original,
		Currency:      "usd",
	})
	require.NoError(t, err)
	require.Equal(t, "Monitor", created.Title)
	require.Equal(t, "100.00", created.Price)
	require.Equal(t, "120.00", *created.OriginalPrice)
	require.Equal(t, "USD", created.Currency)

	require.NoError(t, svc.SetPrice(ctx, created.ID, decimal.RequireFromString("80")))
	dto, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "80.00", dto.Price)

	err = svc.SetPrice(ctx, created.ID, decimal.RequireFromString("-1"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = svc.SetPrice(ctx, uuid.New(), decimal.RequireFromString("5"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Create(ctx, CreateDealInput{Title: "", Price: decimal.Zero})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRandomDeals(t *testing.T) {
	deals := RandomDeals(20, rand.New(rand.NewPCG(1, 2)))
	require.Len(t, deals, 20)
	for _, d := range deals {
		require.NotEmpty(t, d.Title)
		require.True(t, d.Price.IsPositive())
		require.NotNil(t, d.OriginalPrice)
		require.True(t, d.OriginalPrice.GreaterThan(d.Price))
	}
}
