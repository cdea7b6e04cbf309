package appconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("expected default config version, got %d", cfg.ConfigVersion)
	}
	if cfg.DataDir == "" {
		t.Fatalf("expected default data dir")
	}
	if cfg.Metrics.Addr != "" {
		t.Fatalf("expected metrics disabled by default")
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "config_version: 1\ndata_dir: /tmp/toodle-test\nmetrics:\n  addr: 127.0.0.1:9300\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/toodle-test" {
		t.Fatalf("unexpected data dir %q", cfg.DataDir)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9300" {
		t.Fatalf("unexpected metrics addr %q", cfg.Metrics.Addr)
	}
}

func TestLoadRejectsWrongVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("config_version: 99\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TOODLE_TEST_DIR", "/tmp/toodle-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("config_version: 1\ndata_dir: $TOODLE_TEST_DIR/data\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/toodle-env/data" {
		t.Fatalf("env not expanded: %q", cfg.DataDir)
	}
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := WriteDefault(path, false); err != nil {
		t.Fatalf("write default: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
}
