package encryption

import (
	"fmt"

	"floradex/internal/config"
	"floradex/internal/flora"
)

// NewTokenSealerFromConfig creates a TokenSealer based on the configuration
// type. "none" returns a nil sealer: the token is stored in plaintext.
func NewTokenSealerFromConfig(cfg config.EncryptionConfig) (flora.TokenSealer, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeSealer(cfg), nil
	case "test":
		return NewTestSealer(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
