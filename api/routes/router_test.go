package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/fleetdesk/fleetdesk-backend/pkg/auth"
	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

type stubSessions struct {
	ok bool
}

func (s stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.ok, nil
}

func (s stubSessions) Rotate(ctx context.Context, refreshToken, accessID string) (string, string, error) {
	return "", "", nil
}

func (s stubSessions) Revoke(ctx context.Context, accessID string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "fleetdesk-test", ExpirationMinutes: 15},
	}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(RouterParams{
		Config:   testConfig(),
		Sessions: stubSessions{ok: true},
	})
}

func mintRouterToken(t *testing.T, cfg *config.Config, companyID *uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:    uuid.New(),
		CompanyID: companyID,
		Role:      enums.UserRoleOwner,
		JTI:       uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterHealthLive(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-FleetDesk-Env"); env != "test" {
		t.Fatalf("expected env header test got %q", env)
	}
}

func TestRouterPublicPing(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterPrivatePingRequiresToken(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterPrivatePingWithToken(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(RouterParams{Config: cfg, Sessions: stubSessions{ok: true}})

	companyID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintRouterToken(t, cfg, &companyID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), companyID.String()) {
		t.Fatalf("expected company id in body, got %s", resp.Body.String())
	}
}

func TestRouterRejectsRevokedSession(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(RouterParams{Config: cfg, Sessions: stubSessions{ok: false}})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintRouterToken(t, cfg, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterCompanyRoutesNeedCompanyClaim(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(RouterParams{Config: cfg, Sessions: stubSessions{ok: true}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loads/", nil)
	req.Header.Set("Authorization", "Bearer "+mintRouterToken(t, cfg, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRouterRoutesReachHandlers(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(RouterParams{Config: cfg, Sessions: stubSessions{ok: true}})

	companyID := uuid.New()
	token := mintRouterToken(t, cfg, &companyID)

	// Services are unset, so a handler that is actually reached reports
	// a 500 rather than chi's 404/405.
	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/companies/me"},
		{http.MethodGet, "/api/v1/loads/"},
		{http.MethodGet, "/api/v1/expenses/"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("%s %s: expected 500 got %d", tc.method, tc.path, resp.Code)
		}
	}
}
