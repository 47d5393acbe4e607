package logging

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Settings mirrors the optional "logging" mapping of a credentials file.
// Unknown keys are ignored.
type Settings struct {
	Level             string   `mapstructure:"level"`
	Encoding          string   `mapstructure:"encoding"`
	Development       bool     `mapstructure:"development"`
	DisableStacktrace bool     `mapstructure:"disable_stacktrace"`
	OutputPaths       []string `mapstructure:"output_paths"`
}

// New creates a production-ready structured logger configured for JSON output.
func New() (*zap.Logger, error) {
	return build(productionConfig())
}

// NewFromSettings builds a logger from the credentials' logging mapping.
// A nil or empty mapping yields the same logger as New.
func NewFromSettings(raw map[string]any) (*zap.Logger, error) {
	settings, err := DecodeSettings(raw)
	if err != nil {
		return nil, err
	}

	cfg := productionConfig()
	if settings.Development {
		cfg.Development = true
		cfg.Sampling = nil
	}
	if settings.Level != "" {
		level, err := zapcore.ParseLevel(settings.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
	if settings.Encoding != "" {
		cfg.Encoding = settings.Encoding
	}
	if len(settings.OutputPaths) > 0 {
		cfg.OutputPaths = settings.OutputPaths
	}
	cfg.DisableStacktrace = settings.DisableStacktrace

	return build(cfg)
}

// DecodeSettings converts a loosely typed mapping into Settings.
func DecodeSettings(raw map[string]any) (Settings, error) {
	var settings Settings
	if len(raw) == 0 {
		return settings, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		Result:           &settings,
	})
	if err != nil {
		return Settings{}, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Settings{}, fmt.Errorf("decode logging settings: %w", err)
	}
	return settings, nil
}

func productionConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false
	return cfg
}

func build(cfg zap.Config) (*zap.Logger, error) {
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
