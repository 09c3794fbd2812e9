package encryption

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"floradex/internal/config"
	"floradex/internal/flora"
)

// AgeSealer implements flora.TokenSealer using filippo.io/age with X25519
// keys. The recipient (public key) is stored in plaintext; the identity file
// is written 0600 but not passphrase-protected — the session must stay
// readable without prompting on every command.
type AgeSealer struct {
	recipientPath string
	identityPath  string
}

var _ flora.TokenSealer = (*AgeSealer)(nil)

// NewAgeSealer creates an AgeSealer from configuration.
func NewAgeSealer(cfg config.EncryptionConfig) *AgeSealer {
	return &AgeSealer{
		recipientPath: cfg.RecipientPath,
		identityPath:  cfg.IdentityPath,
	}
}

// Setup generates a new X25519 key pair and writes both halves. Called during
// `floradex config init`; refuses to overwrite existing key material.
func (e *AgeSealer) Setup() error {
	if e.IsConfigured() {
		return fmt.Errorf("key material already exists at %s", e.identityPath)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(e.recipientPath), 0700); err != nil {
		return fmt.Errorf("creating recipient directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(e.identityPath), 0700); err != nil {
		return fmt.Errorf("creating identity directory: %w", err)
	}

	if err := os.WriteFile(e.recipientPath, []byte(identity.Recipient().String()+"\n"), 0644); err != nil {
		return fmt.Errorf("writing recipient: %w", err)
	}
	if err := os.WriteFile(e.identityPath, []byte(identity.String()+"\n"), 0600); err != nil {
		return fmt.Errorf("writing identity: %w", err)
	}
	return nil
}

// Seal encrypts the token with the stored recipient.
func (e *AgeSealer) Seal(plaintext []byte) ([]byte, error) {
	raw, err := os.ReadFile(e.recipientPath)
	if err != nil {
		return nil, fmt.Errorf("reading recipient: %w", err)
	}

	recipient, err := age.ParseX25519Recipient(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parsing recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("sealing token: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing sealed token: %w", err)
	}
	return buf.Bytes(), nil
}

// Open decrypts a sealed token with the stored identity.
func (e *AgeSealer) Open(ciphertext []byte) ([]byte, error) {
	f, err := os.Open(e.identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity: %w", err)
	}
	defer f.Close()

	identities, err := age.ParseIdentities(f)
	if err != nil {
		return nil, fmt.Errorf("parsing identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identities...)
	if err != nil {
		return nil, fmt.Errorf("unsealing token: %w", err)
	}

	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading unsealed token: %w", err)
	}
	return plain, nil
}

// IsConfigured reports whether both key files exist.
func (e *AgeSealer) IsConfigured() bool {
	if _, err := os.Stat(e.recipientPath); err != nil {
		return false
	}
	if _, err := os.Stat(e.identityPath); err != nil {
		return false
	}
	return true
}
