package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/tailored-agentic-units/provisionality/app"
	"github.com/tailored-agentic-units/provisionality/observability"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to config JSON file (optional)")
		inputFile  = flag.String("input", "", "Path to newline-delimited JSON messages (default stdin)")
		immutable  = flag.Bool("immutable-app", false, "Lock the app State against reflectors (overrides config)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg, err := app.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *immutable {
		cfg.App.Immutable = true
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	var input io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			log.Fatalf("Failed to open input: %v", err)
		}
		defer f.Close()
		input = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n, err := dispatchMessages(ctx, a, input)
	a.Wait()
	m := a.Metrics()
	logger.Debug("dispatch complete",
		"messages", n,
		"tasks", m.Scheduled,
		"failed", m.Failed,
		"panicked", m.Panicked,
	)
	if err != nil {
		log.Fatalf("Failed after %d messages: %v", n, err)
	}

	out, err := json.MarshalIndent(snapshot(a), "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode snapshot: %v", err)
	}
	fmt.Println(string(out))
}
