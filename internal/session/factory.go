package session

import (
	"fmt"
	"os"
	"path/filepath"

	"floradex/internal/config"
	"floradex/internal/flora"
)

// NewSessionStoreFromConfig creates a SessionStore based on the config type.
// sealer may be nil (plaintext token storage); it only applies to the sqlite
// store, the memory store never touches disk.
func NewSessionStoreFromConfig(cfg config.SessionConfig, sealer flora.TokenSealer) (flora.SessionStore, error) {
	switch cfg.Type {
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite session store")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating session data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "session.db"), sealer)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store type: %s", cfg.Type)
	}
}
