package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eugenenazirov/adsconfig/internal/adsconfig"
)

var (
	// ErrNoCredentials is returned before any credentials have been stored.
	ErrNoCredentials = errors.New("no credentials loaded")
)

// Storage provides access to the resolved credentials served by the API.
type Storage interface {
	GetCredentials() (adsconfig.Config, error)
	SetCredentials(cfg adsconfig.Config) error
}

// MemoryStorage keeps credentials in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu    sync.RWMutex
	creds adsconfig.Config
}

// NewMemoryStorage returns an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// GetCredentials returns a deep copy of the stored credentials.
func (s *MemoryStorage) GetCredentials() (adsconfig.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.creds == nil {
		return nil, ErrNoCredentials
	}
	return s.creds.Clone(), nil
}

// SetCredentials validates and stores a deep copy of cfg.
func (s *MemoryStorage) SetCredentials(cfg adsconfig.Config) error {
	if err := adsconfig.ValidateMap(cfg); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}

	normalized := adsconfig.ConvertLoginCustomerIDToString(cfg).Clone()

	s.mu.Lock()
	s.creds = normalized
	s.mu.Unlock()

	return nil
}
