package application

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/adsconfig/internal/adsconfig"
	"github.com/eugenenazirov/adsconfig/internal/config"
)

const credentialsYAML = `developer_token: abc123
client_id: client
client_secret: secret
refresh_token: refresh
login_customer_id: 1234567890
`

func testCredentials() adsconfig.Config {
	return adsconfig.Config{
		adsconfig.KeyDeveloperToken: "abc123",
		adsconfig.KeyClientID:       "client",
		adsconfig.KeyClientSecret:   "secret",
		adsconfig.KeyRefreshToken:   "refresh",
	}
}

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, testCredentials(), logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	creds, err := app.storage.GetCredentials()
	if err != nil {
		t.Fatalf("GetCredentials returned error: %v", err)
	}
	if creds[adsconfig.KeyClientID] != "client" {
		t.Fatalf("expected seeded credentials, got %v", creds)
	}
	if app.server == nil || app.router == nil || app.handler == nil {
		t.Fatalf("expected server, router, and handler to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}

	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/credentials", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected credentials endpoint to respond 200, got %d", rec.Code)
	}
}

func TestNewReturnsErrorForInvalidCredentials(t *testing.T) {
	cfg := baseTestConfig(":0")
	creds := testCredentials()
	delete(creds, adsconfig.KeyRefreshToken)

	_, err := New(cfg, creds, zaptest.NewLogger(t))
	if !errors.Is(err, adsconfig.ErrMissingRequiredKey) {
		t.Fatalf("expected missing required key error, got %v", err)
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestLoadCredentialsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "google-ads.yaml")
	if err := os.WriteFile(path, []byte(credentialsYAML), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	cfg := baseTestConfig(":0")
	cfg.CredentialsPath = path

	creds, err := LoadCredentials(cfg)
	if err != nil {
		t.Fatalf("LoadCredentials returned error: %v", err)
	}
	if creds[adsconfig.KeyLoginCustomerID] != "1234567890" {
		t.Fatalf("expected normalized customer id, got %#v", creds[adsconfig.KeyLoginCustomerID])
	}
	if got := SourceLabel(cfg); got != "file:"+path {
		t.Fatalf("unexpected source label %s", got)
	}
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_ADS_DEVELOPER_TOKEN", "abc123")
	t.Setenv("GOOGLE_ADS_CLIENT_ID", "client")
	t.Setenv("GOOGLE_ADS_CLIENT_SECRET", "secret")
	t.Setenv("GOOGLE_ADS_REFRESH_TOKEN", "refresh")

	cfg := baseTestConfig(":0")
	cfg.CredentialsSource = config.SourceEnv

	creds, err := LoadCredentials(cfg)
	if err != nil {
		t.Fatalf("LoadCredentials returned error: %v", err)
	}
	if creds[adsconfig.KeyRefreshToken] != "refresh" {
		t.Fatalf("unexpected credentials %v", creds)
	}
	if got := SourceLabel(cfg); got != "env:GOOGLE_ADS_*" {
		t.Fatalf("unexpected source label %s", got)
	}
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.CredentialsPath = filepath.Join(t.TempDir(), "absent.yaml")

	if _, err := LoadCredentials(cfg); !errors.Is(err, adsconfig.ErrMissingFile) {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		CredentialsSource:    config.SourceFile,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
