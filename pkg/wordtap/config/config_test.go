package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cognicore/wordtap/pkg/wordtap/internalerr"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFromReader(t *testing.T) {
	input := `
log_level: debug
store:
  driver: memory
translate:
  endpoint: https://translate.test/v1
  target_lang: DE
  base_delay: 50ms
dictionary:
  timeout: 2s
`
	cfg, err := LoadFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.LogLevel != LogDebug || cfg.Store.Driver != DriverMemory {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Translate.TargetLang != "DE" || cfg.Translate.BaseDelay != 50*time.Millisecond {
		t.Errorf("translate = %+v", cfg.Translate)
	}
	if cfg.Translate.MaxAttempts != 3 {
		t.Errorf("omitted max_attempts should keep default, got %d", cfg.Translate.MaxAttempts)
	}
	if cfg.Dictionary.Timeout != 2*time.Second || cfg.Dictionary.Endpoint == "" {
		t.Errorf("dictionary = %+v", cfg.Dictionary)
	}
}

func TestLoadFromReaderEmpty(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromReaderUnknownField(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("colour: blue\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	cfg.Store.Driver = "postgres"
	cfg.Translate.Endpoint = "ftp://translate.test"
	cfg.Translate.MaxAttempts = -1
	cfg.Dictionary.Timeout = -time.Second

	err := Validate(cfg)
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	for _, want := range []string{"log_level", "store.driver", "translate.endpoint", "translate.max_attempts", "dictionary.timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestValidateSQLiteNeedsPath(t *testing.T) {
	cfg := Default()
	cfg.Store.Path = ""
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "store.path") {
		t.Errorf("expected store.path error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordtap.yaml")
	if err := os.WriteFile(path, []byte("store:\n  driver: memory\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("driver = %s", cfg.Store.Driver)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSlogLevel(t *testing.T) {
	if LogDebug.SlogLevel().String() != "DEBUG" || LogLevel("").SlogLevel().String() != "INFO" {
		t.Error("unexpected slog level mapping")
	}
}
