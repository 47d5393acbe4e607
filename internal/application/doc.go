// Package application provides application initialization and dependency wiring.
// It selects the credentials source, seeds the credential store, and builds
// the handler, router, and HTTP server, keeping the main package focused on
// CLI parsing and orchestration.
package application
