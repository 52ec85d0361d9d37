package collector

import (
	"context"
	"sync"
)

// Settings is the persisted collector address. It is re-read before every
// outbound call so a live reconfiguration takes effect immediately; nothing
// caches it beyond a single call.
type Settings struct {
	Host string `json:"serverHost"`
	Port int    `json:"serverPort"`
}

func DefaultSettings() Settings {
	return Settings{Host: "localhost", Port: 3025}
}

// SettingsStore abstracts the platform key-value storage holding the
// connection settings.
type SettingsStore interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// MemorySettingsStore keeps settings in process memory, falling back to the
// defaults until something is saved.
type MemorySettingsStore struct {
	mu       sync.RWMutex
	settings *Settings
}

func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{}
}

func (s *MemorySettingsStore) Load(ctx context.Context) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return DefaultSettings(), nil
	}
	return *s.settings, nil
}

func (s *MemorySettingsStore) Save(ctx context.Context, settings Settings) error {
	s.mu.Lock()
	s.settings = &settings
	s.mu.Unlock()
	return nil
}
