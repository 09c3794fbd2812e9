package flora

// SessionStore is the persistence seam for the active session. Implementations
// live in internal/session; every component that needs the token takes the
// store as an explicit dependency and reads it before each call — there is no
// ambient session global.
type SessionStore interface {
	// Get returns the current session, or nil when none is stored.
	Get() (*Session, error)

	// Set replaces the stored session wholesale. No merging.
	Set(s *Session) error

	// Clear removes the stored session. Clearing an empty store is a no-op.
	Clear() error

	// Close releases any underlying resources.
	Close() error
}

// requireSession reads the store and rejects the operation when no token is
// present, before any HTTP request is issued.
func requireSession(store SessionStore, operation string) (*Session, error) {
	s, err := store.Get()
	if err != nil {
		return nil, err
	}
	if s == nil || s.Token == "" {
		return nil, &NotAuthenticatedError{Operation: operation}
	}
	return s, nil
}
