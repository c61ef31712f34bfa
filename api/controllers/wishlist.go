package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealtracker-backend/api/responses"
	"github.com/angelmondragon/dealtracker-backend/api/validators"
	"github.com/angelmondragon/dealtracker-backend/internal/wishlist"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
)

func WishlistList(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return handleUser(logg, "wishlist", svc != nil, func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
		items, err := svc.List(r.Context(), userID)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
		return nil
	})
}

// WishlistAddItem saves a deal, or flips alert_enabled when it is already saved.
// A new entry answers 201; every other outcome answers 200 with its own message.
func WishlistAddItem(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return handleUser(logg, "wishlist", svc != nil, func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
		var body wishlist.AddItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		result, err := svc.Add(r.Context(), userID, body)
		if err != nil {
			return err
		}
		status := http.StatusOK
		if result.Outcome == wishlist.OutcomeAdded {
			status = http.StatusCreated
		}
		responses.WriteMessage(w, status, result.Outcome.Message(), result)
		return nil
	})
}

func WishlistRemoveItem(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return handleUser(logg, "wishlist", svc != nil, func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
		dealID, err := pathUUID(r, "dealId", "deal id")
		if err != nil {
			return err
		}
		if err := svc.Remove(r.Context(), userID, dealID); err != nil {
			return err
		}
		responses.WriteMessage(w, http.StatusOK, "removed from wishlist", map[string]bool{"removed": true})
		return nil
	})
}
