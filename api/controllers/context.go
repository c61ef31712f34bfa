package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dealtracker-backend/api/middleware"
	"github.com/angelmondragon/dealtracker-backend/api/responses"
	"github.com/angelmondragon/dealtracker-backend/api/validators"
	pkgerrors "github.com/angelmondragon/dealtracker-backend/pkg/errors"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
)

// handlerFunc writes its own success response and returns any failure for rendering.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// userHandlerFunc is a handlerFunc that runs on behalf of a signed-in user.
type userHandlerFunc func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error

// handle adapts h to net/http. ready is false when the backing service was not wired,
// in which case every request fails with an internal error naming dependency.
func handle(logg *logger.Logger, dependency string, ready bool, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		if ready {
			err = h(w, r)
		} else {
			err = pkgerrors.New(pkgerrors.CodeInternal, dependency+" service unavailable")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}

func handleUser(logg *logger.Logger, dependency string, ready bool, h userHandlerFunc) http.HandlerFunc {
	return handle(logg, dependency, ready, func(w http.ResponseWriter, r *http.Request) error {
		userID, err := userIDFromContext(r.Context())
		if err != nil {
			return err
		}
		return h(w, r, userID)
	})
}

func userIDFromContext(ctx context.Context) (uuid.UUID, error) {
	p, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return p.UserID, nil
}

func pathUUID(r *http.Request, param, label string) (uuid.UUID, error) {
	return validators.ParseUUID(chi.URLParam(r, param), label)
}
