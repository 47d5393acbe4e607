package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/adsconfig/internal/adsconfig"
	"github.com/eugenenazirov/adsconfig/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxDocumentBytes = 64 << 10

// Loader resolves credentials from the service's configured source.
type Loader func() (adsconfig.Config, error)

// Handler wires the credential store and loader into HTTP handlers.
type Handler struct {
	storage storage.Storage
	loader  Loader
	source  string

	clock func() time.Time

	mu        sync.RWMutex
	updatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithSource sets the label reported for the credentials' origin.
func WithSource(source string) HandlerOption {
	return func(h *Handler) {
		h.source = source
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, loader Loader, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage: store,
		loader:  loader,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.updatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCredentials(w http.ResponseWriter, r *http.Request) {
	_ = r
	creds, err := h.storage.GetCredentials()
	if err != nil {
		if errors.Is(err, storage.ErrNoCredentials) {
			writeError(w, http.StatusServiceUnavailable, "Credentials unavailable", err.Error(),
				"POST /api/credentials/reload once the credentials source is fixed")
			return
		}
		writeInternalError(w, err)
		return
	}

	resp, err := h.describe(creds)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Invalid request", "configuration document exceeds 64 KiB")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to read request body")
		return
	}

	cfg, err := adsconfig.ParseYAMLDocument(string(body))
	if err != nil {
		writeConfigError(w, err)
		return
	}

	creds, err := cfg.Decode()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Valid: true,
		Flow:  string(creds.Flow()),
		Keys:  cfg.Keys(),
	})
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	_ = r
	if h.loader == nil {
		writeError(w, http.StatusNotImplemented, "Reload unavailable", "no credentials loader configured")
		return
	}

	cfg, err := h.loader()
	if err != nil {
		writeConfigError(w, err)
		return
	}

	if err := h.storage.SetCredentials(cfg); err != nil {
		writeConfigError(w, err)
		return
	}
	h.markUpdated()

	creds, err := h.storage.GetCredentials()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp, err := h.describe(creds)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	resp.Message = "Credentials reloaded successfully"
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) describe(cfg adsconfig.Config) (credentialsResponse, error) {
	creds, err := cfg.Decode()
	if err != nil {
		return credentialsResponse{}, err
	}

	return credentialsResponse{
		Source:          h.source,
		Flow:            string(creds.Flow()),
		LoginCustomerID: creds.LoginCustomerID,
		Keys:            cfg.Keys(),
		Credentials:     adsconfig.Redact(cfg),
		UpdatedAt:       h.currentUpdatedAt(),
	}, nil
}

func (h *Handler) currentUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.updatedAt
}

func (h *Handler) markUpdated() {
	h.mu.Lock()
	h.updatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type credentialsResponse struct {
	Source          string           `json:"source,omitempty"`
	Flow            string           `json:"flow"`
	LoginCustomerID string           `json:"loginCustomerId,omitempty"`
	Keys            []string         `json:"keys"`
	Credentials     adsconfig.Config `json:"credentials"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Message         string           `json:"message,omitempty"`
}

type validateResponse struct {
	Valid bool     `json:"valid"`
	Flow  string   `json:"flow"`
	Keys  []string `json:"keys"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind,omitempty"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

// writeConfigError maps resolver failures to 400 for undecodable documents
// and 422 for documents that decode but do not satisfy the contract.
func writeConfigError(w http.ResponseWriter, err error) {
	kind := adsconfig.KindOf(err)
	if kind == "" {
		writeInternalError(w, err)
		return
	}

	status := http.StatusUnprocessableEntity
	if kind == adsconfig.KindParse {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{
		Error:   "Invalid configuration",
		Kind:    string(kind),
		Details: err.Error(),
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
