package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/adsconfig/internal/adsconfig"
	"github.com/eugenenazirov/adsconfig/internal/application"
	"github.com/eugenenazirov/adsconfig/internal/config"
	"github.com/eugenenazirov/adsconfig/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("adsconfig", "Resolves and validates advertising API credentials")
	configFile := kingpinApp.Flag("config", "Path to YAML settings file").String()
	credentialsPath := kingpinApp.Flag("credentials", "Path to the credentials YAML file (default ~/google-ads.yaml)").String()
	credentialsSource := kingpinApp.Flag("credentials-source", "Where to read credentials from").Enum(config.SourceFile, config.SourceEnv)

	serveCmd := kingpinApp.Command("serve", "Serve resolved credentials over HTTP").Default()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	checkCmd := kingpinApp.Command("check", "Resolve credentials once and print them with secrets redacted")

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *credentialsPath != "" {
		overrides.CredentialsPath = credentialsPath
	}

	if *credentialsSource != "" {
		overrides.CredentialsSource = credentialsSource
	}

	if *port != "" {
		overrides.Port = port
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		kingpinApp.Fatalf("failed to load configuration: %v", err)
	}

	if command == checkCmd.FullCommand() {
		if err := runCheck(os.Stdout, cfg); err != nil {
			kingpinApp.Fatalf("%v", err)
		}
		return
	}

	serve(kingpinApp, cfg)
}

func serve(kingpinApp *kingpin.Application, cfg config.Config) {
	creds, err := application.LoadCredentials(cfg)
	if err != nil {
		kingpinApp.Fatalf("failed to load credentials from %s: %v", application.SourceLabel(cfg), err)
	}

	logger, err := newLogger(creds)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("credentials resolved",
		zap.String("source", application.SourceLabel(cfg)),
		zap.Strings("keys", creds.Keys()),
	)

	app, err := application.New(cfg, creds, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// newLogger honours the credentials' logging mapping when present.
func newLogger(creds adsconfig.Config) (*zap.Logger, error) {
	switch settings := creds[adsconfig.KeyLogging].(type) {
	case map[string]any:
		return logging.NewFromSettings(settings)
	case adsconfig.Config:
		return logging.NewFromSettings(settings)
	default:
		return logging.New()
	}
}

// runCheck resolves credentials and writes the redacted mapping as YAML.
func runCheck(w io.Writer, cfg config.Config) error {
	source := application.SourceLabel(cfg)
	creds, err := application.LoadCredentials(cfg)
	if err != nil {
		return fmt.Errorf("credentials from %s are invalid: %w", source, err)
	}

	decoded, err := creds.Decode()
	if err != nil {
		return err
	}

	doc, err := adsconfig.Marshal(adsconfig.Redact(creds))
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "# source: %s\n# flow: %s\n%s", source, decoded.Flow(), doc); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
