package main

import (
	"io"
	"log/slog"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/use-agent/philosophy/config"
	"github.com/use-agent/philosophy/engine"
	"github.com/use-agent/philosophy/wiki"
)

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	case "pretty":
		handler = charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
		})
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// fetchStack is everything needed to load article paragraphs.
type fetchStack struct {
	fetcher *wiki.Fetcher
	engines []string
	close   func()
}

// newFetchStack wires plain HTTP, then the optional browser, behind a
// dispatcher that remembers which engine works for each domain.
func newFetchStack(cfg *config.Config) (*fetchStack, error) {
	httpEngine, err := engine.NewHTTPEngine(cfg.Fetch.Proxy)
	if err != nil {
		return nil, err
	}
	engines := []engine.Engine{httpEngine}
	closers := []func(){}

	if cfg.Browser.Enabled {
		rodEngine, err := engine.NewRodEngine(cfg.Browser)
		if err != nil {
			return nil, err
		}
		engines = append(engines, rodEngine)
		closers = append(closers, func() {
			if err := rodEngine.Close(); err != nil {
				slog.Warn("browser close failed", "error", err)
			}
		})
	}

	memory := engine.NewDomainMemory(cfg.Fetch.MemoryTTL)
	closers = append(closers, memory.Stop)
	dispatcher := engine.NewDispatcher(engines, memory)

	parser, err := wiki.NewParser(cfg.Trace.ParagraphSelector)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(engines))
	for i, e := range engines {
		names[i] = e.Name()
	}
	slog.Debug("fetch engines ready", "engines", names, "memory_ttl", cfg.Fetch.MemoryTTL)

	return &fetchStack{
		fetcher: wiki.NewFetcher(dispatcher, parser, cfg.Fetch),
		engines: names,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}
