package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/dealtracker-backend/api/responses"
	pkgAuth "github.com/angelmondragon/dealtracker-backend/pkg/auth"
	"github.com/angelmondragon/dealtracker-backend/pkg/auth/session"
	"github.com/angelmondragon/dealtracker-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/dealtracker-backend/pkg/errors"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
)

// TokenFromRequest returns the access token from the auth cookie, falling back to
// an Authorization bearer header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil {
			if v := strings.TrimSpace(c.Value); v != "" {
				return v
			}
		}
	}
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}

// Auth validates the access token and seeds the request context with the caller's Principal.
func Auth(cfg config.JWTConfig, cookieName string, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, pkgAuth.ErrTokenExpired) {
					msg = "token expired"
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msg))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
					return
				}
			}

			ctx := WithPrincipal(r.Context(), Principal{
				UserID:     claims.UserID,
				AccessID:   claims.ID,
				Subscriber: claims.IsSubscriber,
			})
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
