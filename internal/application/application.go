package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/adsconfig/internal/adsconfig"
	"github.com/eugenenazirov/adsconfig/internal/api"
	"github.com/eugenenazirov/adsconfig/internal/config"
	"github.com/eugenenazirov/adsconfig/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application from the settings and the credentials
// already resolved from cfg's source.
func New(cfg config.Config, creds adsconfig.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetCredentials(creds); err != nil {
		return nil, fmt.Errorf("failed to apply initial credentials: %w", err)
	}

	handler := api.NewHandler(store, CredentialLoader(cfg), api.WithSource(SourceLabel(cfg)))
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage: store,
		handler: handler,
		router:  router,
		logger:  logger,
		server:  NewServer(cfg, router),
	}, nil
}

// CredentialLoader returns the loader for the source named in cfg.
func CredentialLoader(cfg config.Config) api.Loader {
	if cfg.CredentialsSource == config.SourceEnv {
		return adsconfig.LoadFromEnv
	}
	path := cfg.CredentialsPath
	return func() (adsconfig.Config, error) {
		return adsconfig.LoadFromYAMLFile(path)
	}
}

// LoadCredentials resolves credentials once from the source named in cfg.
func LoadCredentials(cfg config.Config) (adsconfig.Config, error) {
	return CredentialLoader(cfg)()
}

// SourceLabel describes where credentials are read from, for logs and the API.
func SourceLabel(cfg config.Config) string {
	if cfg.CredentialsSource == config.SourceEnv {
		return "env:" + adsconfig.EnvPrefix + "*"
	}
	if cfg.CredentialsPath == "" {
		return "file:~/" + adsconfig.DefaultFileName
	}
	return "file:" + cfg.CredentialsPath
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
