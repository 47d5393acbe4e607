// Package adsconfig resolves advertising API credentials from exactly one of
// three sources: a YAML file, an in-memory mapping, or GOOGLE_ADS_* environment
// variables. Every loader normalizes key names and types, enforces the
// required-key contract, and validates login_customer_id before handing the
// mapping to the caller.
package adsconfig
