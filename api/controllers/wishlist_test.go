package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dealtracker-backend/internal/wishlist"
	pkgerrors "github.com/angelmondragon/dealtracker-backend/pkg/errors"
)

type stubWishlistService struct {
	addFn    func(context.Context, uuid.UUID, wishlist.AddItemRequest) (wishlist.AddResult, error)
	removeFn func(context.Context, uuid.UUID, uuid.UUID) error
	items    []wishlist.WishlistItemDTO
}

func (s *stubWishlistService) List(context.Context, uuid.UUID) ([]wishlist.WishlistItemDTO, error) {
	return s.items, nil
}

func (s *stubWishlistService) Add(ctx context.Context, userID uuid.UUID, req wishlist.AddItemRequest) (wishlist.AddResult, error) {
	return s.addFn(ctx, userID, req)
}

func (s *stubWishlistService) Remove(ctx context.Context, userID, dealID uuid.UUID) error {
	return s.removeFn(ctx, userID, dealID)
}

func postWishlist(t *testing.T, svc wishlist.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/wishlist", strings.NewReader(body))
	req = withUser(req, uuid.NewString())
	resp := httptest.NewRecorder()
	WishlistAddItem(svc, testLogger)(resp, req)
	return resp
}

func TestWishlistAddItemStatusByOutcome(t *testing.T) {
	dealID := uuid.New()
	cases := []struct {
		outcome wishlist.AddOutcome
		status  int
		message string
	}{
		{wishlist.OutcomeAdded, http.StatusCreated, "added to wishlist"},
		{wishlist.OutcomeAlertUpdated, http.StatusOK, "wishlist alert setting updated"},
		{wishlist.OutcomeAlreadyPresent, http.StatusOK, "item already in wishlist"},
	}
	for _, tc := range cases {
		t.Run(string(tc.outcome), func(t *testing.T) {
			svc := &stubWishlistService{addFn: func(_ context.Context, _ uuid.UUID, req wishlist.AddItemRequest) (wishlist.AddResult, error) {
				assert.Equal(t, dealID, req.DealID)
				require.NotNil(t, req.AlertEnabled)
				assert.True(t, *req.AlertEnabled)
				return wishlist.AddResult{Outcome: tc.outcome, Item: wishlist.WishlistItemDTO{DealID: dealID}}, nil
			}}
			resp := postWishlist(t, svc, `{"deal_id":"`+dealID.String()+`","alert_enabled":true}`)
			require.Equal(t, tc.status, resp.Code)

			var envelope struct {
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
			assert.Equal(t, tc.message, envelope.Message)
		})
	}
}

func TestWishlistAddItemRejectsBadDealID(t *testing.T) {
	svc := &stubWishlistService{}
	resp := postWishlist(t, svc, `{"deal_id":"not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestWishlistAddItemSubscriberGate(t *testing.T) {
	svc := &stubWishlistService{addFn: func(context.Context, uuid.UUID, wishlist.AddItemRequest) (wishlist.AddResult, error) {
		return wishlist.AddResult{}, pkgerrors.New(pkgerrors.CodeForbidden, "only subscribers can enable deal alerts")
	}}
	resp := postWishlist(t, svc, `{"deal_id":"`+uuid.NewString()+`","alert_enabled":true}`)
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "only subscribers can enable deal alerts", decodeError(t, resp.Body.Bytes()).Message)
}

func TestWishlistRemoveItem(t *testing.T) {
	dealID := uuid.New()
	svc := &stubWishlistService{removeFn: func(_ context.Context, _ uuid.UUID, got uuid.UUID) error {
		if got != dealID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in wishlist")
		}
		return nil
	}}

	req := addRouteParam(withUser(httptest.NewRequest(http.MethodDelete, "/", nil), uuid.NewString()), "dealId", dealID.String())
	resp := httptest.NewRecorder()
	WishlistRemoveItem(svc, testLogger)(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)

	req = addRouteParam(withUser(httptest.NewRequest(http.MethodDelete, "/", nil), uuid.NewString()), "dealId", uuid.NewString())
	resp = httptest.NewRecorder()
	WishlistRemoveItem(svc, testLogger)(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestWishlistListRequiresUser(t *testing.T) {
	resp := httptest.NewRecorder()
	WishlistList(&stubWishlistService{}, testLogger)(resp, httptest.NewRequest(http.MethodGet, "/api/wishlist", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = httptest.NewRecorder()
	WishlistList(&stubWishlistService{items: []wishlist.WishlistItemDTO{{}}}, testLogger)(resp, withUser(httptest.NewRequest(http.MethodGet, "/api/wishlist", nil), uuid.NewString()))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"items"`)
}
