package testutil

import (
	"testing"

	"floradex/internal/flora"
	"floradex/internal/session"
)

// NewTestSessionStore creates an empty in-memory session store.
func NewTestSessionStore() flora.SessionStore {
	return session.NewMemoryStore()
}

// SeedSession stores a known session and returns it.
func SeedSession(t *testing.T, store flora.SessionStore) *flora.Session {
	t.Helper()

	sess := &flora.Session{
		Token:    "test-token",
		UserID:   "42",
		Username: "daisy",
	}
	if err := store.Set(sess); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	return sess
}
