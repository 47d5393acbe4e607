package adsconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

const customerIDLength = 10

// ValidateMap checks that every required key is present and non-empty, that
// known keys hold values of the expected shape and, when login_customer_id is
// set, that it is a valid customer ID.
func ValidateMap(cfg Config) error {
	var missing []string
	for _, key := range requiredKeys {
		if isEmpty(cfg[key]) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &Error{
			Kind: KindMissingRequiredKey,
			Keys: missing,
			Err:  fmt.Errorf("required keys are missing or empty"),
		}
	}

	if err := validateShapes(cfg); err != nil {
		return err
	}

	if cid, ok := cfg[KeyLoginCustomerID]; ok && cid != nil {
		return ValidateLoginCustomerID(cid)
	}
	return nil
}

// validateShapes rejects nested values under scalar keys and a logging
// value that is not a mapping.
func validateShapes(cfg Config) error {
	var invalid []string
	for _, key := range append(RequiredKeys(), OptionalKeys()...) {
		value, ok := cfg[key]
		if !ok || value == nil {
			continue
		}
		if key == KeyLogging {
			if !isMapping(value) {
				invalid = append(invalid, key)
			}
			continue
		}
		if !isScalar(value) {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		return &Error{
			Kind: KindInvalidType,
			Keys: invalid,
			Err:  fmt.Errorf("logging must be a mapping and other keys must be scalars"),
		}
	}
	return nil
}

func isMapping(value any) bool {
	switch value.(type) {
	case map[string]any, Config:
		return true
	default:
		return false
	}
}

func isScalar(value any) bool {
	switch value.(type) {
	case string, bool, float32, float64:
		return true
	default:
		return isInteger(value)
	}
}

// ValidateLoginCustomerID accepts a string or integer and requires its
// decimal form to be exactly ten ASCII digits, without separators.
func ValidateLoginCustomerID(value any) error {
	s, ok := customerIDString(value)
	if !ok {
		return &Error{
			Kind: KindInvalidCustomerID,
			Keys: []string{KeyLoginCustomerID},
			Err:  fmt.Errorf("unsupported type %T", value),
		}
	}

	s = strings.TrimSpace(s)
	if len(s) != customerIDLength || !allDigits(s) {
		return &Error{
			Kind: KindInvalidCustomerID,
			Keys: []string{KeyLoginCustomerID},
			Err:  fmt.Errorf("%q must be %d digits with no dashes", s, customerIDLength),
		}
	}
	return nil
}

// ConvertLoginCustomerIDToString replaces an integer login_customer_id with
// its base-10 string. Any other configuration is returned as is.
func ConvertLoginCustomerIDToString(cfg Config) Config {
	cid, ok := cfg[KeyLoginCustomerID]
	if !ok || !isInteger(cid) {
		return cfg
	}

	out := make(Config, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	out[KeyLoginCustomerID] = cast.ToString(cid)
	return out
}

func customerIDString(value any) (string, bool) {
	if s, ok := value.(string); ok {
		return s, true
	}
	if !isInteger(value) {
		return "", false
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return "", false
	}
	return s, true
}

func isInteger(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	s, err := cast.ToStringE(value)
	return err == nil && s == ""
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
