package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/adsconfig/internal/adsconfig"
	"github.com/eugenenazirov/adsconfig/internal/application"
	"github.com/eugenenazirov/adsconfig/internal/config"
)

const initialCredentials = `developer_token: abc123
client_id: client
client_secret: secret
refresh_token: refresh
`

func newApp(t *testing.T, path string) http.Handler {
	t.Helper()

	cfg := config.Config{
		Port:              ":0",
		CredentialsSource: config.SourceFile,
		CredentialsPath:   path,
	}
	creds, err := application.LoadCredentials(cfg)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	app, err := application.New(cfg, creds, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("application.New: %v", err)
	}
	return app.Server().Handler
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "google-ads.yaml")
	if err := os.WriteFile(path, []byte(initialCredentials), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	handler := newApp(t, path)

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	rec = performRequest(t, handler, http.MethodPost, "/api/credentials/validate", []byte("client_id: only\n"), map[string]string{"Content-Type": "application/yaml"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 from validate, got %d", rec.Code)
	}

	// rotate the file on disk, then reload
	rotated := initialCredentials + "login_customer_id: 9876543210\n"
	if err := os.WriteFile(path, []byte(rotated), 0o600); err != nil {
		t.Fatalf("rewrite credentials: %v", err)
	}
	rec = performRequest(t, handler, http.MethodPost, "/api/credentials/reload", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from reload, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/credentials", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from credentials, got %d", rec.Code)
	}

	var response struct {
		LoginCustomerID string         `json:"loginCustomerId"`
		Credentials     map[string]any `json:"credentials"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.LoginCustomerID != "9876543210" {
		t.Fatalf("unexpected login customer id %q", response.LoginCustomerID)
	}
	if response.Credentials[adsconfig.KeyRefreshToken] != "REDACTED" {
		t.Fatalf("expected refresh token to be redacted, got %v", response.Credentials[adsconfig.KeyRefreshToken])
	}

	// a broken file on disk must not replace the served credentials
	if err := os.WriteFile(path, []byte("login_customer_id: 123-456-7890\n"+initialCredentials), 0o600); err != nil {
		t.Fatalf("rewrite credentials: %v", err)
	}
	rec = performRequest(t, handler, http.MethodPost, "/api/credentials/reload", nil, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 from reload of invalid file, got %d", rec.Code)
	}
	rec = performRequest(t, handler, http.MethodGet, "/api/credentials", nil, nil)
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.LoginCustomerID != "9876543210" {
		t.Fatalf("expected previous credentials to survive, got %q", response.LoginCustomerID)
	}
}
