package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"floradex/internal/config"
	"floradex/internal/flora"
	"floradex/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	return &config.Config{
		InstallID: "install-test",
		BaseDir:   dir,
		LogDir:    filepath.Join(dir, "log"),
		API:       config.APIConfig{BaseURL: "https://api.example.com"},
		Session:   config.SessionConfig{Type: "memory"},
		Encryption: config.EncryptionConfig{
			Type: "none",
		},
	}
}

func TestNewApp(t *testing.T) {
	t.Run("stamps log lines with the injected run id", func(t *testing.T) {
		cfg := testConfig(t)

		a, err := NewApp(cfg, "Test", testutil.NewStubIDGenerator())
		if err != nil {
			t.Fatalf("NewApp() error = %v", err)
		}
		defer a.Close()

		raw, err := os.ReadFile(filepath.Join(cfg.LogDir, "floradex.log"))
		if err != nil {
			t.Fatalf("reading log file: %v", err)
		}
		if !strings.Contains(string(raw), "\tid-1\t") {
			t.Errorf("log output %q missing the run id column", raw)
		}
	})

	t.Run("requires a base url", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.API.BaseURL = ""

		if _, err := NewApp(cfg, "Test", testutil.NewStubIDGenerator()); err == nil {
			t.Fatal("NewApp() without base_url should fail")
		}
	})

	t.Run("starts with an idle workflow", func(t *testing.T) {
		a, err := NewApp(testConfig(t), "Test", testutil.NewStubIDGenerator())
		if err != nil {
			t.Fatalf("NewApp() error = %v", err)
		}
		defer a.Close()

		if got := a.WorkflowState(); got != flora.StateIdle {
			t.Errorf("WorkflowState() = %s, want idle", got)
		}
	})
}
