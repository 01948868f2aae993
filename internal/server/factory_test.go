package server

import (
	"context"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"coffeeshop/internal/auth/authtest"
	"coffeeshop/internal/config"
	"coffeeshop/internal/observability/logging"
)

// configure points the environment at iss and returns the loaded configuration
func configure(t *testing.T, iss *authtest.Issuer, extra map[string]string) *config.Config {
	t.Helper()
	caPath := filepath.Join(t.TempDir(), "issuer-ca.pem")
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: iss.Server.Certificate().Raw})
	if err := os.WriteFile(caPath, caPEM, 0o600); err != nil {
		t.Fatalf("write CA: %v", err)
	}

	t.Setenv("COFFEESHOP_AUTH_DOMAIN", iss.Domain())
	t.Setenv("COFFEESHOP_AUTH_AUDIENCE", authtest.Audience)
	t.Setenv("COFFEESHOP_TLS_CA_PATH", caPath)
	t.Setenv("COFFEESHOP_DATABASE_PATH", ":memory:")
	t.Setenv("COFFEESHOP_DATABASE_RESET", "true")
	t.Setenv("COFFEESHOP_LOG_LEVEL", "error")
	for k, v := range extra {
		t.Setenv("COFFEESHOP_"+k, v)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load error: %v", err)
	}
	return cfg
}

func TestNewFromConfig_ServesDrinks(t *testing.T) {
	tests := []struct {
		name  string
		extra map[string]string
	}{
		{"fresh key set per request", nil},
		{"cached key set", map[string]string{"AUTH_JWKS_CACHE_ENABLED": "true"}},
		{"discovered key set", map[string]string{"AUTH_DISCOVERY_ENABLED": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iss := authtest.NewIssuer(t)
			cfg := configure(t, iss, tt.extra)

			srv, err := NewFromConfig(context.Background(), cfg)
			if err != nil {
				t.Fatalf("NewFromConfig error: %v", err)
			}
			t.Cleanup(func() { _ = srv.Stop(context.Background()) })

			req := httptest.NewRequest(http.MethodGet, "/drinks-detail", nil)
			req.Header.Set("Authorization", "Bearer "+iss.Token(t, iss.Claims("get:drinks-detail")))
			rec := httptest.NewRecorder()
			srv.httpServer.Handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			if rec.Header().Get("X-Trace-ID") == "" {
				t.Errorf("expected a trace id header")
			}

			for _, unrouted := range []struct{ method, path string }{
				{http.MethodGet, "/coffee"},
				{http.MethodPut, "/drinks"},
			} {
				rec := httptest.NewRecorder()
				srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(unrouted.method, unrouted.path, nil))
				if rec.Header().Get("X-Trace-ID") == "" {
					t.Errorf("%s %s: expected a trace id header on status %d", unrouted.method, unrouted.path, rec.Code)
				}
			}
		})
	}
}

func TestNewFromConfig_DiscoveryFailure(t *testing.T) {
	iss := authtest.NewIssuer(t)
	cfg := configure(t, iss, map[string]string{"AUTH_DISCOVERY_ENABLED": "true"})
	cfg.Auth.Domain = iss.Domain() + ".invalid"

	if _, err := NewFromConfig(context.Background(), cfg); err == nil {
		t.Errorf("expected error when the issuer cannot be discovered")
	}
}

func TestServer_StopReleasesResources(t *testing.T) {
	closed := 0
	srv := New(Config{Address: "127.0.0.1:0", MetricsAddress: "127.0.0.1:0"},
		http.NotFoundHandler(), http.NotFoundHandler(), logging.Discard(),
		closerFunc(func() error { closed++; return nil }),
	)
	if err := srv.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if closed != 1 {
		t.Errorf("expected resources closed once, got %d", closed)
	}
}
