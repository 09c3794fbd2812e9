package encryption_test

import (
	"testing"

	"floradex/internal/config"
	"floradex/internal/encryption"
)

func TestNewTokenSealerFromConfig(t *testing.T) {
	t.Run("age is the default", func(t *testing.T) {
		t.Parallel()
		for _, typ := range []string{"age", ""} {
			sealer, err := encryption.NewTokenSealerFromConfig(config.EncryptionConfig{Type: typ})
			if err != nil {
				t.Fatalf("type %q: error = %v", typ, err)
			}
			if _, ok := sealer.(*encryption.AgeSealer); !ok {
				t.Errorf("type %q: got %T, want *encryption.AgeSealer", typ, sealer)
			}
		}
	})

	t.Run("test", func(t *testing.T) {
		t.Parallel()
		sealer, err := encryption.NewTokenSealerFromConfig(config.EncryptionConfig{Type: "test"})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if _, ok := sealer.(*encryption.TestSealer); !ok {
			t.Errorf("got %T, want *encryption.TestSealer", sealer)
		}
	})

	t.Run("none returns no sealer", func(t *testing.T) {
		t.Parallel()
		sealer, err := encryption.NewTokenSealerFromConfig(config.EncryptionConfig{Type: "none"})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if sealer != nil {
			t.Errorf("got %T, want nil", sealer)
		}
	})

	t.Run("unknown type fails", func(t *testing.T) {
		t.Parallel()
		if _, err := encryption.NewTokenSealerFromConfig(config.EncryptionConfig{Type: "rot13"}); err == nil {
			t.Error("expected error for unknown type")
		}
	})
}
