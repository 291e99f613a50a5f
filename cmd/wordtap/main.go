package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cognicore/wordtap/pkg/wordtap"
	"github.com/cognicore/wordtap/pkg/wordtap/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		dbPath     = flag.String("db", "", "SQLite database path (overrides config)")
		memory     = flag.Bool("memory", false, "Keep everything in memory")
		textPath   = flag.String("text", "", "Open this text file on start")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error (overrides config)")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath, *dbPath, *memory, *logLevel)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel.SlogLevel(),
	})))

	ctx := context.Background()

	engine, cleanup, err := buildEngine(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	r := newREPL(engine, os.Stdout)
	if *textPath != "" {
		if err := r.exec(ctx, "load "+*textPath); err != nil {
			log.Fatal(err)
		}
	} else {
		r.resume(ctx)
	}

	fmt.Println("===========================================")
	fmt.Println("  wordtap")
	fmt.Println("  Tap words, save phrases, learn in context")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type 'help' for commands (Ctrl+D to exit):")
	fmt.Println()

	r.run(ctx, os.Stdin)
	fmt.Println("\nGoodbye!")
}

func loadConfig(path, dbPath string, memory bool, logLevel string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if dbPath != "" {
		cfg.Store.Driver = config.DriverSQLite
		cfg.Store.Path = dbPath
	}
	if memory {
		cfg.Store.Driver = config.DriverMemory
	}
	if logLevel != "" {
		cfg.LogLevel = config.LogLevel(strings.ToLower(logLevel))
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildEngine(ctx context.Context, cfg *config.Config) (*wordtap.Engine, func(), error) {
	loader := config.Loader{Config: cfg}
	comp, closeStore, err := loader.Build(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	opts := wordtap.Options{
		Store:      comp.Store,
		Analyzer:   comp.Analyzer,
		Dictionary: comp.Dictionary,
		Usage:      comp.Usage,
	}
	if cfg.Translate.Endpoint != "" {
		opts.Translator = comp.Translator
	}
	engine := wordtap.New(opts)

	return engine, closeStore, nil
}

// run reads commands from in until EOF or "quit".
func (r *repl) run(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if err := r.exec(ctx, line); err != nil {
			fmt.Fprintln(r.out, "Error:", err)
		}
	}
}
