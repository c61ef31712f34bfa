package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/dealtracker-backend/api/middleware"
	"github.com/angelmondragon/dealtracker-backend/api/responses"
	"github.com/angelmondragon/dealtracker-backend/api/validators"
	"github.com/angelmondragon/dealtracker-backend/internal/auth"
	pkgAuth "github.com/angelmondragon/dealtracker-backend/pkg/auth"
	"github.com/angelmondragon/dealtracker-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/dealtracker-backend/pkg/errors"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
)

// AuthCookies issues and clears the httpOnly session cookie.
type AuthCookies struct {
	Config config.CookieConfig
}

func (c AuthCookies) set(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Config.Name,
		Value:    token,
		Path:     "/",
		Domain:   c.Config.Domain,
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   c.Config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c AuthCookies) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Config.Name,
		Value:    "",
		Path:     "/",
		Domain:   c.Config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AuthRegister creates an account and signs the new user in.
func AuthRegister(svc auth.Service, cookies AuthCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Name = validators.SanitizeString(body.Name, 50)

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookies.set(w, result.AccessToken, result.ExpiresAt)
		responses.WriteMessage(w, http.StatusCreated, "account created", result)
	}
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, cookies AuthCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookies.set(w, result.AccessToken, result.ExpiresAt)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the presented session, if it is still valid, and always clears the cookie.
func AuthLogout(svc auth.Service, cfg config.JWTConfig, cookies AuthCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if token := middleware.TokenFromRequest(r, cookies.Config.Name); token != "" {
			if claims, err := pkgAuth.ParseAccessToken(cfg, token); err == nil {
				if err := svc.Logout(r.Context(), claims.ID); err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}
		}

		cookies.clear(w)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthMe returns the authenticated user's profile.
func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		userID, err := userIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Me(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
