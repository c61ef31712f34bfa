package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/dealtracker-backend/api/controllers"
	"github.com/angelmondragon/dealtracker-backend/api/middleware"
	"github.com/angelmondragon/dealtracker-backend/internal/auth"
	"github.com/angelmondragon/dealtracker-backend/internal/deals"
	"github.com/angelmondragon/dealtracker-backend/internal/notifications"
	"github.com/angelmondragon/dealtracker-backend/internal/wishlist"
	"github.com/angelmondragon/dealtracker-backend/pkg/auth/session"
	"github.com/angelmondragon/dealtracker-backend/pkg/config"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
	"github.com/angelmondragon/dealtracker-backend/pkg/metrics"
)

// RateLimitStore backs the login and register throttles.
type RateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Params lists everything the HTTP surface depends on. Nil dependencies are tolerated:
// the matching routes answer 500 and readiness skips absent pingers.
type Params struct {
	Config    *config.Config
	Logger    *logger.Logger
	Sessions  session.AccessSessionChecker
	RateLimit RateLimitStore
	Health    map[string]controllers.Pinger

	Auth          auth.Service
	Deals         deals.Service
	Wishlist      wishlist.Service
	Notifications notifications.Service

	HTTPMetrics *metrics.HTTPMetrics
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	if cfg.RateLimit.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.HTTPMetrics),
		middleware.CORS(cfg.CORS),
		middleware.RateLimit(cfg.RateLimit, logg),
	)

	cookies := controllers.AuthCookies{Config: cfg.Cookie}
	requireAuth := middleware.Auth(cfg.JWT, cfg.Cookie.Name, p.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Health))
	})
	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(middleware.RegisterPolicy(cfg.AuthRateLimit), p.RateLimit, logg)).Post("/register", controllers.AuthRegister(p.Auth, cookies, logg))
		r.With(middleware.AuthRateLimit(middleware.LoginPolicy(cfg.AuthRateLimit), p.RateLimit, logg)).Post("/login", controllers.AuthLogin(p.Auth, cookies, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, cookies, logg))
		r.With(requireAuth).Get("/me", controllers.AuthMe(p.Auth, logg))
	})

	r.Route("/api/deals", func(r chi.Router) {
		r.Get("/", controllers.DealsList(p.Deals, logg))
		r.Get("/{dealId}", controllers.DealsGet(p.Deals, logg))
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", controllers.WishlistList(p.Wishlist, logg))
		r.Post("/", controllers.WishlistAddItem(p.Wishlist, logg))
		r.Delete("/{dealId}", controllers.WishlistRemoveItem(p.Wishlist, logg))
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", controllers.ListNotifications(p.Notifications, logg))
		r.Post("/mark-as-read", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
	})

	return r
}
