package session_test

import (
	"testing"

	"floradex/internal/config"
	"floradex/internal/session"
)

func TestNewSessionStoreFromConfig(t *testing.T) {
	t.Run("creates a sqlite store with a data dir", func(t *testing.T) {
		t.Parallel()
		cfg := config.SessionConfig{Type: "sqlite", DataDir: t.TempDir()}

		store, err := session.NewSessionStoreFromConfig(cfg, nil)
		if err != nil {
			t.Fatalf("NewSessionStoreFromConfig() error = %v", err)
		}
		defer store.Close()

		if _, ok := store.(*session.SQLiteStore); !ok {
			t.Errorf("store type = %T, want *SQLiteStore", store)
		}
	})

	t.Run("empty type defaults to sqlite", func(t *testing.T) {
		t.Parallel()
		cfg := config.SessionConfig{DataDir: t.TempDir()}

		store, err := session.NewSessionStoreFromConfig(cfg, nil)
		if err != nil {
			t.Fatalf("NewSessionStoreFromConfig() error = %v", err)
		}
		store.Close()
	})

	t.Run("sqlite requires a data dir", func(t *testing.T) {
		t.Parallel()
		_, err := session.NewSessionStoreFromConfig(config.SessionConfig{Type: "sqlite"}, nil)
		if err == nil {
			t.Fatal("expected error for missing data_dir")
		}
	})

	t.Run("creates a memory store", func(t *testing.T) {
		t.Parallel()
		store, err := session.NewSessionStoreFromConfig(config.SessionConfig{Type: "memory"}, nil)
		if err != nil {
			t.Fatalf("NewSessionStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*session.MemoryStore); !ok {
			t.Errorf("store type = %T, want *MemoryStore", store)
		}
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		t.Parallel()
		_, err := session.NewSessionStoreFromConfig(config.SessionConfig{Type: "redis"}, nil)
		if err == nil {
			t.Fatal("expected error for unknown store type")
		}
	})
}
