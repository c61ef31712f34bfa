package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/dealtracker-backend/api/controllers"
	"github.com/angelmondragon/dealtracker-backend/internal/auth"
	"github.com/angelmondragon/dealtracker-backend/internal/deals"
	"github.com/angelmondragon/dealtracker-backend/internal/notifications"
	"github.com/angelmondragon/dealtracker-backend/internal/users"
	"github.com/angelmondragon/dealtracker-backend/internal/wishlist"
	pkgAuth "github.com/angelmondragon/dealtracker-backend/pkg/auth"
	"github.com/angelmondragon/dealtracker-backend/pkg/config"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
	"github.com/angelmondragon/dealtracker-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessions struct {
	live map[string]bool
}

func (s stubSessions) HasSession(_ context.Context, accessID string) (bool, error) {
	return s.live[accessID], nil
}

type stubAuthService struct{ auth.Service }

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.Session, error) {
	return &auth.Session{AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour), User: &users.UserDTO{}}, nil
}

type stubDealsService struct{ deals.Service }

func (stubDealsService) List(context.Context, int, string) (deals.DealsPageDTO, error) {
	return deals.DealsPageDTO{Deals: []deals.DealDTO{}}, nil
}

type stubWishlistService struct{ wishlist.Service }

func (stubWishlistService) List(context.Context, uuid.UUID) ([]wishlist.WishlistItemDTO, error) {
	return []wishlist.WishlistItemDTO{}, nil
}

type stubNotificationsService struct{ notifications.Service }

func (stubNotificationsService) List(context.Context, notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{Items: []notifications.NotificationDTO{}}, nil
}

type denyAllStore struct{}

func (denyAllStore) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	return false, 99, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Env: "test"},
		JWT:    config.JWTConfig{Secret: "router-secret", Issuer: "dealtracker", ExpirationMinutes: 60},
		Cookie: config.CookieConfig{Name: "auth_token"},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func testParams(cfg *config.Config, live ...string) Params {
	sessions := stubSessions{live: map[string]bool{}}
	for _, id := range live {
		sessions.live[id] = true
	}
	return Params{
		Config:        cfg,
		Logger:        logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard}),
		Sessions:      sessions,
		Health:        map[string]controllers.Pinger{"postgres": stubPinger{}},
		Auth:          stubAuthService{},
		Deals:         stubDealsService{},
		Wishlist:      stubWishlistService{},
		Notifications: stubNotificationsService{},
	}
}

func buildToken(t *testing.T, cfg *config.Config, accessID string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New(), JTI: accessID})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestDealsArePublic(t *testing.T) {
	router := NewRouter(testParams(testConfig()))
	resp := serve(router, httptest.NewRequest(http.MethodGet, "/api/deals", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public deals got %d", resp.Code)
	}
}

func TestProtectedGroupsRejectMissingToken(t *testing.T) {
	router := NewRouter(testParams(testConfig()))
	for _, path := range []string{"/api/wishlist", "/api/notifications", "/api/auth/me"} {
		resp := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s got %d", path, resp.Code)
		}
	}
}

func TestProtectedGroupsAcceptCookieAndBearer(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(testParams(cfg, "live-session"))
	token := buildToken(t, cfg, "live-session")

	req := httptest.NewRequest(http.MethodGet, "/api/wishlist", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	if resp := serve(router, req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with cookie got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if resp := serve(router, req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer got %d", resp.Code)
	}
}

func TestRevokedSessionIsRejected(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(testParams(cfg))
	req := httptest.NewRequest(http.MethodGet, "/api/wishlist", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "logged-out"))
	if resp := serve(router, req); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session got %d", resp.Code)
	}
}

func TestLoginIsThrottled(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRateLimit = config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginIPLimit: 1, LoginEmailLimit: 1}
	params := testParams(cfg)
	params.RateLimit = denyAllStore{}
	router := NewRouter(params)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@example.com","password":"password1"}`))
	resp := serve(router, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}

	params.RateLimit = nil
	resp = serve(NewRouter(params), httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@example.com","password":"password1"}`)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 without a limiter store got %d", resp.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	params := testParams(testConfig())
	params.HTTPMetrics = metrics.NewHTTPMetrics(reg)
	params.Gatherer = reg
	router := NewRouter(params)

	for _, path := range []string{"/health/live", "/health/ready"} {
		if resp := serve(router, httptest.NewRequest(http.MethodGet, path, nil)); resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
	resp := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "dealtracker_http_requests_total") {
		t.Fatalf("expected http counters in metrics output")
	}
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(testParams(testConfig()))
	req := httptest.NewRequest(http.MethodOptions, "/api/wishlist", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := serve(router, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin header got %q", got)
	}
	if got := resp.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials allowed got %q", got)
	}
}

func TestRateLimitHonorsForwardedForOnlyWhenTrusted(t *testing.T) {
	fromProxy := func(forwarded string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		return req
	}

	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1, IdleTTL: time.Minute}
	router := NewRouter(testParams(cfg))
	if resp := serve(router, fromProxy("1.1.1.1")); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp := serve(router, fromProxy("2.2.2.2")); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected untrusted forwarded-for to share the peer bucket got %d", resp.Code)
	}

	cfg.RateLimit.TrustProxyHeaders = true
	router = NewRouter(testParams(cfg))
	for _, ip := range []string{"1.1.1.1", "2.2.2.2"} {
		if resp := serve(router, fromProxy(ip)); resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s behind a trusted proxy got %d", ip, resp.Code)
		}
	}
	if resp := serve(router, fromProxy("1.1.1.1")); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected repeat client to be throttled got %d", resp.Code)
	}
}
