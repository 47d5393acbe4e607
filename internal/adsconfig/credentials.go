package adsconfig

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Flow names the OAuth2 credential scheme a configuration is set up for.
type Flow string

const (
	FlowInstalledApp   Flow = "installed-app"
	FlowServiceAccount Flow = "service-account"
)

const redactedValue = "REDACTED"

// Credentials is a typed view of a resolved Config.
type Credentials struct {
	DeveloperToken       string         `mapstructure:"developer_token"`
	ClientID             string         `mapstructure:"client_id"`
	ClientSecret         string         `mapstructure:"client_secret"`
	RefreshToken         string         `mapstructure:"refresh_token"`
	LoginCustomerID      string         `mapstructure:"login_customer_id"`
	PathToPrivateKeyFile string         `mapstructure:"path_to_private_key_file"`
	DelegatedAccount     string         `mapstructure:"delegated_account"`
	Endpoint             string         `mapstructure:"endpoint"`
	Logging              map[string]any `mapstructure:"logging"`
}

// Flow reports service-account when both service-account keys are set and
// installed-app otherwise.
func (c Credentials) Flow() Flow {
	if c.PathToPrivateKeyFile != "" && c.DelegatedAccount != "" {
		return FlowServiceAccount
	}
	return FlowInstalledApp
}

// Decode converts the mapping into Credentials. Scalars are weakly typed so
// an integer login_customer_id decodes into its string form.
func (c Config) Decode() (Credentials, error) {
	var creds Credentials
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Result:           &creds,
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(c)); err != nil {
		return Credentials{}, &Error{Kind: KindInvalidType, Err: fmt.Errorf("decode credentials: %w", err)}
	}
	return creds, nil
}

// Keys returns the keys present in the mapping, sorted.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy; nested mappings and slices are copied too.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

// Redact returns a deep copy with secret values masked.
func Redact(cfg Config) Config {
	out := cfg.Clone()
	for _, key := range secretKeys {
		if v, ok := out[key]; ok && !isEmpty(v) {
			out[key] = redactedValue
		}
	}
	return out
}

// Marshal encodes the configuration as a YAML document.
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(map[string]any(cfg))
	if err != nil {
		return nil, fmt.Errorf("marshal YAML: %w", err)
	}
	return data, nil
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, nested := range val {
			out[k] = cloneValue(nested)
		}
		return out
	case Config:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, nested := range val {
			out[i] = cloneValue(nested)
		}
		return out
	default:
		return v
	}
}
