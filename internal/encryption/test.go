package encryption

import (
	"bytes"
	"fmt"

	"floradex/internal/flora"
)

// testHeader is prepended to tokens by TestSealer so sealed output is clearly
// different from plaintext while remaining deterministic and reversible.
var testHeader = []byte("FDSEAL\x00\x00")

// TestSealer is a simple, deterministic sealer for testing. It prepends a
// fixed 8-byte header on Seal and strips it on Open, requiring no crypto.
type TestSealer struct{}

var _ flora.TokenSealer = (*TestSealer)(nil)

// NewTestSealer creates a new TestSealer.
func NewTestSealer() *TestSealer {
	return &TestSealer{}
}

func (*TestSealer) Setup() error { return nil }

func (*TestSealer) Seal(plaintext []byte) ([]byte, error) {
	return append(append([]byte{}, testHeader...), plaintext...), nil
}

func (*TestSealer) Open(ciphertext []byte) ([]byte, error) {
	if !bytes.HasPrefix(ciphertext, testHeader) {
		return nil, fmt.Errorf("invalid test sealing header")
	}
	return append([]byte{}, ciphertext[len(testHeader):]...), nil
}

func (*TestSealer) IsConfigured() bool { return true }
