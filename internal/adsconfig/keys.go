package adsconfig

import "strings"

// Canonical configuration keys.
const (
	KeyDeveloperToken       = "developer_token"
	KeyClientID             = "client_id"
	KeyClientSecret         = "client_secret"
	KeyRefreshToken         = "refresh_token"
	KeyLoginCustomerID      = "login_customer_id"
	KeyPathToPrivateKeyFile = "path_to_private_key_file"
	KeyDelegatedAccount     = "delegated_account"
	KeyEndpoint             = "endpoint"
	KeyLogging              = "logging"
)

const (
	// EnvPrefix is prepended to the upper-cased key name to form its environment variable.
	EnvPrefix = "GOOGLE_ADS_"
	// EnvConfigurationFilePath overrides the default YAML file location.
	EnvConfigurationFilePath = EnvPrefix + "CONFIGURATION_FILE_PATH"
	// DefaultFileName is looked up in the user's home directory.
	DefaultFileName = "google-ads.yaml"
)

var (
	requiredKeys = []string{KeyDeveloperToken, KeyClientID, KeyClientSecret, KeyRefreshToken}
	optionalKeys = []string{
		KeyLoginCustomerID,
		KeyPathToPrivateKeyFile,
		KeyDelegatedAccount,
		KeyEndpoint,
		KeyLogging,
	}
	installedAppKeys   = []string{KeyClientID, KeyClientSecret, KeyRefreshToken}
	serviceAccountKeys = []string{KeyPathToPrivateKeyFile, KeyDelegatedAccount}
	secretKeys         = []string{KeyDeveloperToken, KeyClientSecret, KeyRefreshToken}
)

// RequiredKeys returns the keys every resolved configuration must carry.
func RequiredKeys() []string { return clone(requiredKeys) }

// OptionalKeys returns the recognised keys that may be omitted.
func OptionalKeys() []string { return clone(optionalKeys) }

// OAuth2InstalledAppKeys returns the keys used by the installed-application OAuth2 flow.
func OAuth2InstalledAppKeys() []string { return clone(installedAppKeys) }

// OAuth2ServiceAccountKeys returns the keys used by the service-account OAuth2 flow.
func OAuth2ServiceAccountKeys() []string { return clone(serviceAccountKeys) }

// EnvVarName maps a canonical key to its environment variable name.
func EnvVarName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

func knownKey(key string) bool {
	for _, k := range requiredKeys {
		if k == key {
			return true
		}
	}
	for _, k := range optionalKeys {
		if k == key {
			return true
		}
	}
	return false
}

func clone(src []string) []string {
	out := make([]string, len(src))
	copy(out, src)
	return out
}
