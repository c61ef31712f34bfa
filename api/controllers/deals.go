package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/dealtracker-backend/api/responses"
	"github.com/angelmondragon/dealtracker-backend/api/validators"
	"github.com/angelmondragon/dealtracker-backend/internal/deals"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
	"github.com/angelmondragon/dealtracker-backend/pkg/pagination"
)

// DealsList serves the public feed, newest first, one keyset page at a time.
func DealsList(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(logg, "deals", svc != nil, func(w http.ResponseWriter, r *http.Request) error {
		limit, err := validators.ParseQueryInt(r, "limit", deals.DefaultListLimit, 1, pagination.MaxLimit)
		if err != nil {
			return err
		}
		page, err := svc.List(r.Context(), limit, strings.TrimSpace(r.URL.Query().Get("cursor")))
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, page)
		return nil
	})
}

func DealsGet(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(logg, "deals", svc != nil, func(w http.ResponseWriter, r *http.Request) error {
		dealID, err := pathUUID(r, "dealId", "deal id")
		if err != nil {
			return err
		}
		deal, err := svc.Get(r.Context(), dealID)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, deal)
		return nil
	})
}
