package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for cascadelog.
type Config struct {
	LogDir     string           `toml:"log_dir"`
	LogLevel   string           `toml:"log_level"` // debug, info, warn, error
	API        APIConfig        `toml:"api"`
	Cache      CacheConfig      `toml:"cache"`
	Session    SessionConfig    `toml:"session"`
	Mirror     MirrorConfig     `toml:"mirror"`
	Playground PlaygroundConfig `toml:"playground"`
}

// APIConfig locates the external collaborators: the companion REST API and
// the auth provider that issues bearer tokens.
type APIConfig struct {
	BaseURL     string `toml:"base_url"`
	AuthURL     string `toml:"auth_url"`
	AuthAnonKey string `toml:"auth_anon_key"`
}

// CacheConfig represents configuration for the local submission cache.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type CacheConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// SessionConfig holds the session state location and the inactivity limit.
type SessionConfig struct {
	StatePath        string `toml:"state_path"` // session state file
	KeyPath          string `toml:"key_path"`   // age identity encrypting the token
	IdleLimitMinutes int    `toml:"idle_limit_minutes"`
}

// MirrorConfig represents configuration for the gallery archive backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type MirrorConfig struct {
	Type string `toml:"type"` // "filesystem", "memory", or "s3"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`
	// Optional static credentials; the default AWS chain is used when empty.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`
}

// PlaygroundConfig holds defaults for the local preview server.
type PlaygroundConfig struct {
	Addr string `toml:"addr"` // listen address
	Dir  string `toml:"dir"`  // directory served when none is given
}

// DefaultIdleLimitMinutes mirrors the web client's fixed inactivity window.
const DefaultIdleLimitMinutes = 30

// NewConfig creates a Config with defaults rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		API: APIConfig{
			BaseURL: "http://localhost:5000",
		},
		Cache: CacheConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "cache"),
		},
		Session: SessionConfig{
			StatePath:        filepath.Join(baseDir, "session.json"),
			KeyPath:          filepath.Join(baseDir, "keys", "session.key"),
			IdleLimitMinutes: DefaultIdleLimitMinutes,
		},
		Mirror: MirrorConfig{
			Type:   "filesystem",
			Name:   "local",
			FSRoot: filepath.Join(baseDir, "mirror"),
		},
		Playground: PlaygroundConfig{
			Addr: "127.0.0.1:8642",
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
