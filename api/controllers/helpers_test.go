package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dealtracker-backend/api/middleware"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
	"github.com/angelmondragon/dealtracker-backend/pkg/types"
)

var testLogger = logger.Nop()

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.RouteContext(req.Context())
	if routeCtx == nil {
		routeCtx = chi.NewRouteContext()
	}
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), middleware.Principal{UserID: uuid.MustParse(userID)}))
}

func decodeError(t *testing.T, body []byte) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error
}
