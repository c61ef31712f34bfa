package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/dealtracker-backend/pkg/config"
)

// CORS applies the configured origin policy. Credentials are allowed so the browser
// sends the auth cookie, except when a wildcard origin is configured.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(corsOptions(cfg)).Handler
}

func corsOptions(cfg config.CORSConfig) cors.Options {
	origins := make([]string, 0, len(cfg.AllowedOrigins))
	wildcard := false
	for _, o := range cfg.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		wildcard = wildcard || o == "*"
		origins = append(origins, o)
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Retry-After"},
		AllowCredentials: !wildcard,
		MaxAge:           int(cfg.MaxAge.Seconds()),
	}
}
