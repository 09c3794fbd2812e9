package flora

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so date_added stamps are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
// Production IDs are used for the install ID and per-run log correlation.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// Doer is the transport seam: satisfied by *http.Client in production and by
// a scripted double in tests. No client-side timeout or cancellation is
// layered on top of it; in-flight calls run to whatever the transport allows.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSealer encrypts the session token before it reaches disk and decrypts
// it on read. Implementations live in internal/encryption. A nil sealer means
// the token is stored in plaintext.
type TokenSealer interface {
	// Setup performs one-time key generation. Called during `floradex config init`.
	Setup() error

	// Seal encrypts a token for storage.
	Seal(plaintext []byte) ([]byte, error)

	// Open decrypts a stored token.
	Open(ciphertext []byte) ([]byte, error)

	// IsConfigured reports whether key material exists.
	IsConfigured() bool
}
