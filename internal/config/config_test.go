package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"cascadelog/internal/config"
)

func TestConfig_RoundTrip(t *testing.T) {
	cfg := config.NewConfig("/data/cascadelog")
	cfg.API.BaseURL = "https://api.example.com"
	cfg.API.AuthURL = "https://auth.example.com"
	cfg.Mirror = config.MirrorConfig{
		Type:     "s3",
		Name:     "archive",
		S3Bucket: "my-gallery",
		S3Prefix: "cascadelog",
		S3Region: "eu-west-1",
	}

	var buf bytes.Buffer
	m := &config.Manager{}
	if err := m.Write(&buf, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.API.BaseURL != "https://api.example.com" {
		t.Errorf("API.BaseURL = %q, want round-tripped value", got.API.BaseURL)
	}
	if got.Cache.Type != "sqlite" || got.Cache.DataDir != filepath.Join("/data/cascadelog", "cache") {
		t.Errorf("Cache = %+v, want defaults preserved", got.Cache)
	}
	if got.Session.IdleLimitMinutes != config.DefaultIdleLimitMinutes {
		t.Errorf("IdleLimitMinutes = %d, want %d", got.Session.IdleLimitMinutes, config.DefaultIdleLimitMinutes)
	}
	if got.Mirror.Type != "s3" || got.Mirror.S3Bucket != "my-gallery" {
		t.Errorf("Mirror = %+v, want s3 settings preserved", got.Mirror)
	}
	if got.Playground.Addr != "127.0.0.1:8642" {
		t.Errorf("Playground.Addr = %q, want default", got.Playground.Addr)
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := config.NewConfig("/base")

	if cfg.Cache.Type != "sqlite" {
		t.Errorf("Cache.Type = %q, want sqlite", cfg.Cache.Type)
	}
	if cfg.Mirror.Type != "filesystem" {
		t.Errorf("Mirror.Type = %q, want filesystem", cfg.Mirror.Type)
	}
	if cfg.Session.StatePath != filepath.Join("/base", "session.json") {
		t.Errorf("Session.StatePath = %q, want under base dir", cfg.Session.StatePath)
	}
	if cfg.Session.IdleLimitMinutes != 30 {
		t.Errorf("IdleLimitMinutes = %d, want 30", cfg.Session.IdleLimitMinutes)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates a new config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cascadelog.toml")
		if err := config.Init(path, config.NewConfig("/base")); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := config.ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Cache.Type != "sqlite" {
			t.Errorf("Cache.Type = %q, want sqlite", got.Cache.Type)
		}
	})

	t.Run("refuses to overwrite an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cascadelog.toml")
		if err := os.WriteFile(path, []byte("log_dir = \"/tmp\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := config.Init(path, config.NewConfig("/base")); err == nil {
			t.Error("Init() error = nil, want refusal")
		}
	})
}

func TestReadFromFile_Missing(t *testing.T) {
	if _, err := config.ReadFromFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("ReadFromFile() error = nil, want failure for a missing file")
	}
}
