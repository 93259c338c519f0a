package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/use-agent/philosophy/metrics"
)

// Dispatcher tries engines one after another until one succeeds. The
// engine that last worked for a domain is tried first on later requests.
// Engines never run concurrently for the same request.
type Dispatcher struct {
	engines []Engine
	memory  *DomainMemory
}

// NewDispatcher creates a Dispatcher over engines in escalation order.
// memory may be nil to disable per-domain preference.
func NewDispatcher(engines []Engine, memory *DomainMemory) *Dispatcher {
	return &Dispatcher{engines: engines, memory: memory}
}

// Name reports the dispatcher as an engine.
func (d *Dispatcher) Name() string { return "dispatcher" }

// Fetch implements Engine so a Dispatcher can stand wherever a single
// engine is expected.
func (d *Dispatcher) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	return d.Dispatch(ctx, req)
}

// Dispatch returns the first successful engine result. If every engine
// fails, the errors are joined.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(d.engines) == 0 {
		return nil, fmt.Errorf("dispatcher: no engines configured")
	}
	domain := extractDomain(req.URL)

	var errs []error
	for _, eng := range d.order(domain) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		start := time.Now()
		result, err := eng.Fetch(ctx, req)
		metrics.ObserveFetch(eng.Name(), time.Since(start), err)
		if err != nil {
			slog.Debug("engine failed", "engine", eng.Name(), "url", req.URL, "error", err)
			if d.memory != nil && d.memory.Get(domain) == eng.Name() {
				d.memory.Delete(domain)
			}
			errs = append(errs, err)
			continue
		}

		if d.memory != nil {
			d.memory.Set(domain, eng.Name())
		}
		slog.Debug("engine succeeded", "engine", eng.Name(), "url", req.URL)
		return result, nil
	}
	return nil, fmt.Errorf("dispatcher: all engines failed for %s: %w", req.URL, errors.Join(errs...))
}

// order returns the engines with the remembered one for domain first.
func (d *Dispatcher) order(domain string) []Engine {
	if d.memory == nil {
		return d.engines
	}
	remembered := d.memory.Get(domain)
	if remembered == "" {
		return d.engines
	}
	ordered := make([]Engine, 0, len(d.engines))
	for _, eng := range d.engines {
		if eng.Name() == remembered {
			ordered = append(ordered, eng)
		}
	}
	for _, eng := range d.engines {
		if eng.Name() != remembered {
			ordered = append(ordered, eng)
		}
	}
	return ordered
}

// extractDomain parses the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
