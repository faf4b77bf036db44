package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.BufferSize != 1000 {
		t.Fatalf("default buffer size")
	}
	if cfg.HTTPAddr != ":7411" {
		t.Fatalf("default http addr")
	}
	if cfg.ReadLimit != 100 {
		t.Fatalf("default read limit")
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("default log level")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "siphon.json")
	data := []byte(`{"bufferSize":250,"httpAddr":":9000","authToken":"s3cret","log":{"level":"debug"}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BufferSize != 250 {
		t.Fatalf("expected 250, got %d", cfg.BufferSize)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Fatalf("expected :9000")
	}
	if cfg.AuthToken != "s3cret" {
		t.Fatalf("expected token")
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug")
	}
	// Fields not in the file keep their defaults.
	if cfg.ReadLimit != 100 {
		t.Fatalf("read limit lost its default")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "siphon.yaml")
	data := []byte("bufferSize: 42\nhttpAddr: \":8088\"\nlog:\n  level: warn\n  format: json\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BufferSize != 42 {
		t.Fatalf("expected 42, got %d", cfg.BufferSize)
	}
	if cfg.HTTPAddr != ":8088" {
		t.Fatalf("expected :8088")
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "json" {
		t.Fatalf("log overrides lost: %+v", cfg.Log)
	}
}

func TestLoadClampsBufferSize(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "siphon.json")
	if err := os.WriteFile(file, []byte(`{"bufferSize":0}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BufferSize != 1 {
		t.Fatalf("expected clamp to 1, got %d", cfg.BufferSize)
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("SIPHON_BUFFER_SIZE", "77")
	t.Setenv("SIPHON_HTTP_ADDR", ":7000")
	t.Setenv("SIPHON_AUTH_TOKEN", "hunter2")
	t.Setenv("SIPHON_WRITE_TIMEOUT", "5s")
	t.Setenv("SIPHON_LOG_LEVEL", "error")
	FromEnv(&cfg)
	if cfg.BufferSize != 77 {
		t.Fatalf("env override buffer size")
	}
	if cfg.HTTPAddr != ":7000" {
		t.Fatalf("env override addr")
	}
	if cfg.AuthToken != "hunter2" {
		t.Fatalf("env override token")
	}
	if cfg.WriteTimeout != 5*time.Second {
		t.Fatalf("env override timeout")
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("env override log level")
	}
}
