package adsconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is a resolved credentials mapping keyed by canonical key names.
// Values are strings, nested mappings (logging) or scalars taken from YAML.
type Config map[string]any

// LoadFromYAMLFile reads and validates the YAML file at path. An empty path
// falls back to $GOOGLE_ADS_CONFIGURATION_FILE_PATH and then to
// ~/google-ads.yaml.
func LoadFromYAMLFile(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	source := "file:" + resolved

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: KindMissingFile, Source: source, Err: err}
		}
		return nil, &Error{Kind: KindUnreadableFile, Source: source, Err: err}
	}

	cfg, err := parseYAML(data)
	if err != nil {
		return nil, withSource(err, source)
	}
	return cfg, nil
}

// ParseYAMLDocument parses raw YAML text and validates the result.
func ParseYAMLDocument(doc string) (Config, error) {
	cfg, err := parseYAML([]byte(doc))
	if err != nil {
		return nil, withSource(err, "document")
	}
	return cfg, nil
}

// LoadFromMap validates an in-memory mapping and returns a copy of it.
// Values that are not mappings fail with KindInvalidType.
func LoadFromMap(value any) (Config, error) {
	cfg, err := toConfig(value)
	if err != nil {
		return nil, withSource(err, "map")
	}
	if err := ValidateMap(cfg); err != nil {
		return nil, withSource(err, "map")
	}
	return cfg, nil
}

// LoadFromEnv builds a configuration from GOOGLE_ADS_* environment variables.
// GOOGLE_ADS_LOGGING must hold a JSON object.
func LoadFromEnv() (Config, error) {
	return loadFromEnviron(os.Environ())
}

func loadFromEnviron(environ []string) (Config, error) {
	cfg := Config{}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if !knownKey(key) || name != EnvVarName(key) || value == "" {
			continue
		}

		if key == KeyLogging {
			var logging map[string]any
			if err := json.Unmarshal([]byte(value), &logging); err != nil {
				return nil, &Error{Kind: KindParse, Source: "env", Keys: []string{KeyLogging}, Err: err}
			}
			cfg[key] = logging
			continue
		}
		cfg[key] = value
	}

	if err := ValidateMap(cfg); err != nil {
		return nil, withSource(err, "env")
	}
	return cfg, nil
}

func parseYAML(data []byte) (Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Kind: KindParse, Err: fmt.Errorf("parse YAML: %w", err)}
	}

	// Decoding into an unnamed map keeps nested mappings as map[string]any.
	var raw map[string]any
	if len(doc.Content) > 0 {
		if err := doc.Decode(&raw); err != nil {
			return nil, &Error{Kind: KindParse, Err: fmt.Errorf("parse YAML: %w", err)}
		}
	}
	cfg := Config(raw)
	if cfg == nil {
		cfg = Config{}
	}

	// Unquoted IDs such as 0123456789 resolve to numbers; keep the digits as written.
	if text, ok := numericCustomerIDText(&doc); ok {
		cfg[KeyLoginCustomerID] = text
	}

	cfg = ConvertLoginCustomerIDToString(cfg)
	if err := ValidateMap(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func numericCustomerIDText(doc *yaml.Node) (string, bool) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return "", false
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return "", false
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Value != KeyLoginCustomerID || value.Kind != yaml.ScalarNode {
			continue
		}
		switch value.ShortTag() {
		case "!!int", "!!float":
			return value.Value, true
		}
	}
	return "", false
}

func toConfig(value any) (Config, error) {
	switch v := value.(type) {
	case Config:
		return copyConfig(v), nil
	case map[string]any:
		return copyConfig(v), nil
	case map[string]string:
		out := make(Config, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, nil
	case map[any]any:
		out := make(Config, len(v))
		for k, val := range v {
			key, ok := k.(string)
			if !ok {
				return nil, &Error{Kind: KindInvalidType, Err: fmt.Errorf("non-string key %v (%T)", k, k)}
			}
			out[key] = val
		}
		return out, nil
	default:
		return nil, &Error{Kind: KindInvalidType, Err: fmt.Errorf("got %T, want a mapping", value)}
	}
}

func copyConfig(src map[string]any) Config {
	out := make(Config, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigurationFilePath))
	}
	if path != "" && path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", &Error{Kind: KindMissingFile, Err: fmt.Errorf("resolve home directory: %w", err)}
	}
	if path == "" {
		return filepath.Join(home, DefaultFileName), nil
	}
	return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/")), nil
}
