package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cognicore/wordtap/pkg/wordtap/dictionary"
	"github.com/cognicore/wordtap/pkg/wordtap/signals"
	"github.com/cognicore/wordtap/pkg/wordtap/store"
	"github.com/cognicore/wordtap/pkg/wordtap/store/memstore"
	"github.com/cognicore/wordtap/pkg/wordtap/store/sqlite"
	"github.com/cognicore/wordtap/pkg/wordtap/translate"
)

// Loader constructs components from a Config.
type Loader struct {
	Config *Config
}

// Components holds everything built from the configuration.
type Components struct {
	Store      store.Store
	Analyzer   *signals.Analyzer
	Dictionary *dictionary.Cache
	Translator *translate.Client
	Usage      *translate.Usage
}

// Build opens the store and constructs the remaining components. The
// returned cleanup func closes the store.
func (l *Loader) Build(ctx context.Context) (*Components, func(), error) {
	cfg := l.Config
	if cfg == nil {
		cfg = Default()
	}
	if err := Validate(cfg); err != nil {
		return nil, nil, err
	}

	lex := signals.DefaultLexicon()
	if cfg.Signals.Lexicon != "" {
		loaded, err := signals.LoadLexicon(cfg.Signals.Lexicon)
		if err != nil {
			return nil, nil, fmt.Errorf("load lexicon: %w", err)
		}
		lex = loaded
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("store opened", "driver", cfg.Store.Driver, "path", cfg.Store.Path)

	comp := &Components{
		Store:    st,
		Analyzer: signals.NewAnalyzer(lex),
		Dictionary: dictionary.NewCache(&dictionary.Client{
			Endpoint:   cfg.Dictionary.Endpoint,
			HTTPClient: &http.Client{Timeout: cfg.Dictionary.Timeout},
		}),
		Translator: &translate.Client{
			Endpoint:    cfg.Translate.Endpoint,
			TargetLang:  cfg.Translate.TargetLang,
			MaxAttempts: cfg.Translate.MaxAttempts,
			BaseDelay:   cfg.Translate.BaseDelay,
			HTTPClient:  &http.Client{Timeout: cfg.Translate.Timeout},
		},
		Usage: translate.NewUsage(st),
	}

	cleanup := func() {
		if err := st.Close(); err != nil {
			slog.Warn("close store", "error", err)
		}
	}
	return comp, cleanup, nil
}

func openStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case DriverMemory:
		return memstore.New(), nil
	case DriverSQLite:
		st, err := sqlite.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
