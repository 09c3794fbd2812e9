package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for floradex.
type Config struct {
	InstallID  string           `toml:"install_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	API        APIConfig        `toml:"api"`
	Session    SessionConfig    `toml:"session"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// APIConfig holds everything about the remote backend. The path fields
// override the built-in canonical paths; they are normally left empty. The
// list/delete fields take ordered candidate lists for endpoint fallback
// probing against older backend revisions (see flora.EndpointResolver) — a
// single entry means no probing.
type APIConfig struct {
	BaseURL string `toml:"base_url"`

	// TimeoutSeconds bounds each HTTP call. 0 leaves the transport default
	// in place (no client-imposed timeout).
	TimeoutSeconds int `toml:"timeout_seconds"`

	LoginPath    string `toml:"login_path,omitempty"`
	RegisterPath string `toml:"register_path,omitempty"`
	IdentifyPath string `toml:"identify_path,omitempty"`
	AddPlantPath string `toml:"add_plant_path,omitempty"`
	SpeciesPath  string `toml:"species_path,omitempty"` // contains {type}
	AccountPath  string `toml:"account_path,omitempty"`

	ListPlantPaths   []string `toml:"list_plant_paths,omitempty"`
	DeletePlantPaths []string `toml:"delete_plant_paths,omitempty"` // each contains {id}
}

// SessionConfig represents configuration for the session store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type SessionConfig struct {
	Type    string `toml:"type"`               // "sqlite" (default) or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// EncryptionConfig holds the age key pair used to seal the session token at rest.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type EncryptionConfig struct {
	Type          string `toml:"type"` // "age" (default), "test", or "none"
	RecipientPath string `toml:"recipient_path,omitempty"`
	IdentityPath  string `toml:"identity_path,omitempty"`
}

// NewConfig creates a Config with the provided values and default layout
// under baseDir.
func NewConfig(installID, baseDir, baseURL string) *Config {
	return &Config{
		InstallID: installID,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		API: APIConfig{
			BaseURL: baseURL,
		},
		Session: SessionConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Encryption: EncryptionConfig{
			Type:          "age",
			RecipientPath: filepath.Join(baseDir, "keys", "floradex.pub"),
			IdentityPath:  filepath.Join(baseDir, "keys", "floradex.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
