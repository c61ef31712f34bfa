package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealtracker-backend/api/responses"
	"github.com/angelmondragon/dealtracker-backend/api/validators"
	"github.com/angelmondragon/dealtracker-backend/internal/notifications"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
	"github.com/angelmondragon/dealtracker-backend/pkg/pagination"
)

// ListNotifications pages through the caller's notifications, newest first.
// Query: limit, cursor, unread_only.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return handleUser(logg, "notifications", svc != nil, func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
		params, err := listNotificationsParams(r, userID)
		if err != nil {
			return err
		}
		page, err := svc.List(r.Context(), params)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, page)
		return nil
	})
}

func listNotificationsParams(r *http.Request, userID uuid.UUID) (notifications.ListParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", notifications.DefaultListLimit, 1, pagination.MaxLimit)
	if err != nil {
		return notifications.ListParams{}, err
	}
	unreadOnly, err := validators.ParseQueryBool(r, "unread_only")
	if err != nil {
		return notifications.ListParams{}, err
	}
	return notifications.ListParams{
		UserID:     userID,
		Limit:      limit,
		Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
		UnreadOnly: unreadOnly,
	}, nil
}

func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return handleUser(logg, "notifications", svc != nil, func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
		id, err := pathUUID(r, "notificationId", "notification id")
		if err != nil {
			return err
		}
		if err := svc.MarkRead(r.Context(), userID, id); err != nil {
			return err
		}
		responses.WriteSuccess(w, map[string]bool{"read": true})
		return nil
	})
}

// MarkAllNotificationsRead reports how many unread notifications it flipped.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return handleUser(logg, "notifications", svc != nil, func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
		updated, err := svc.MarkAllRead(r.Context(), userID)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
		return nil
	})
}
