package adsconfig

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies resolver failures.
type Kind string

const (
	KindMissingFile        Kind = "missing-file"
	KindUnreadableFile     Kind = "unreadable-file"
	KindParse              Kind = "parse-error"
	KindInvalidType        Kind = "invalid-type"
	KindMissingRequiredKey Kind = "missing-required-key"
	KindInvalidCustomerID  Kind = "invalid-customer-id"
)

var (
	// ErrMissingFile is matched by errors.Is when the configuration file does not exist.
	ErrMissingFile = &Error{Kind: KindMissingFile}
	// ErrUnreadableFile is matched when the file exists but cannot be read.
	ErrUnreadableFile = &Error{Kind: KindUnreadableFile}
	// ErrParse is matched when YAML or JSON content cannot be decoded.
	ErrParse = &Error{Kind: KindParse}
	// ErrInvalidType is matched when a non-mapping value is passed to LoadFromMap.
	ErrInvalidType = &Error{Kind: KindInvalidType}
	// ErrMissingRequiredKey is matched when one or more required keys are absent or empty.
	ErrMissingRequiredKey = &Error{Kind: KindMissingRequiredKey}
	// ErrInvalidCustomerID is matched when login_customer_id is not exactly 10 digits.
	ErrInvalidCustomerID = &Error{Kind: KindInvalidCustomerID}
)

// Error describes why a configuration could not be resolved.
type Error struct {
	Kind   Kind
	Source string   // where the configuration came from, e.g. "file:/home/u/google-ads.yaml" or "env"
	Keys   []string // offending keys, if any
	Err    error    // underlying cause, may be nil
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("adsconfig: ")
	b.WriteString(string(e.Kind))
	if e.Source != "" {
		fmt.Fprintf(&b, " in %s", e.Source)
	}
	if len(e.Keys) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Keys, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so the package
// sentinels can be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var cfgErr *Error
	if errors.As(err, &cfgErr) {
		return cfgErr.Kind
	}
	return ""
}

func withSource(err error, source string) error {
	var cfgErr *Error
	if errors.As(err, &cfgErr) && cfgErr.Source == "" {
		cp := *cfgErr
		cp.Source = source
		return &cp
	}
	return err
}
