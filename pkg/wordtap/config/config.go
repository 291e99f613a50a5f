package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/wordtap/pkg/wordtap/dictionary"
	"github.com/cognicore/wordtap/pkg/wordtap/internalerr"
	"github.com/cognicore/wordtap/pkg/wordtap/translate"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SlogLevel converts l to a slog level. Unknown levels map to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the top-level wordtap configuration.
type Config struct {
	LogLevel   LogLevel         `yaml:"log_level"`
	Store      StoreConfig      `yaml:"store"`
	Translate  TranslateConfig  `yaml:"translate"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Signals    SignalsConfig    `yaml:"signals"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `yaml:"driver"`

	// Path is the SQLite database file. ":memory:" keeps it in memory.
	Path string `yaml:"path"`
}

// TranslateConfig configures the remote translation client.
type TranslateConfig struct {
	// Endpoint receives POST {"text","targetLang"}. Translation is
	// unavailable when empty.
	Endpoint    string        `yaml:"endpoint"`
	TargetLang  string        `yaml:"target_lang"`
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DictionaryConfig configures the dictionary lookup client.
type DictionaryConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// SignalsConfig configures the signal analyzer.
type SignalsConfig struct {
	// Lexicon is an optional YAML file overriding the built-in word lists.
	Lexicon string `yaml:"lexicon"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   "wordtap.db",
		},
		Translate: TranslateConfig{
			TargetLang:  translate.DefaultTargetLang,
			MaxAttempts: translate.DefaultMaxAttempts,
			BaseDelay:   translate.DefaultBaseDelay,
			Timeout:     15 * time.Second,
		},
		Dictionary: DictionaryConfig{
			Endpoint: dictionary.DefaultEndpoint,
			Timeout:  10 * time.Second,
		},
	}
}

// Load reads the YAML configuration file at path and returns a validated
// Config. Omitted settings keep their defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over Default and validates
// the result. Unknown keys are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns
// every failure joined and wrapped in internalerr.ErrInvalidConfig.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	switch cfg.Store.Driver {
	case DriverSQLite:
		if cfg.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is invalid; valid values: sqlite, memory", cfg.Store.Driver))
	}

	if cfg.Translate.Endpoint != "" {
		if err := validateURL(cfg.Translate.Endpoint); err != nil {
			errs = append(errs, fmt.Errorf("translate.endpoint: %w", err))
		}
	}
	if cfg.Translate.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("translate.max_attempts must be >= 0, got %d", cfg.Translate.MaxAttempts))
	}
	if cfg.Translate.BaseDelay < 0 {
		errs = append(errs, fmt.Errorf("translate.base_delay must be >= 0, got %s", cfg.Translate.BaseDelay))
	}
	if cfg.Translate.Timeout < 0 {
		errs = append(errs, fmt.Errorf("translate.timeout must be >= 0, got %s", cfg.Translate.Timeout))
	}

	if cfg.Dictionary.Endpoint != "" {
		if err := validateURL(cfg.Dictionary.Endpoint); err != nil {
			errs = append(errs, fmt.Errorf("dictionary.endpoint: %w", err))
		}
	}
	if cfg.Dictionary.Timeout < 0 {
		errs = append(errs, fmt.Errorf("dictionary.timeout must be >= 0, got %s", cfg.Dictionary.Timeout))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", internalerr.ErrInvalidConfig, errors.Join(errs...))
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
