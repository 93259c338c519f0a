package wiki

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/philosophy/config"
	"github.com/use-agent/philosophy/engine"
	"github.com/use-agent/philosophy/philosophy"
)

// Fetcher loads article paragraphs through an engine. It implements
// philosophy.Fetcher and is safe for concurrent use; the politeness
// limiter is shared by every caller.
type Fetcher struct {
	engine    engine.Engine
	parser    *Parser
	limiter   *rate.Limiter
	timeout   time.Duration
	userAgent string
}

// NewFetcher creates a Fetcher. A non-positive cfg.RequestsPerSecond
// disables throttling.
func NewFetcher(eng engine.Engine, parser *Parser, cfg config.FetchConfig) *Fetcher {
	f := &Fetcher{
		engine:    eng,
		parser:    parser,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return f
}

// Fetch retrieves page and returns its paragraphs. Every failure is a
// *philosophy.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, page string) ([]philosophy.ContentBlock, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &philosophy.FetchError{Page: page, Err: err}
		}
	}

	req := &engine.FetchRequest{URL: page, Timeout: f.timeout}
	if f.userAgent != "" {
		req.Headers = map[string]string{"User-Agent": f.userAgent}
	}

	start := time.Now()
	res, err := f.engine.Fetch(ctx, req)
	if err != nil {
		return nil, &philosophy.FetchError{Page: page, Err: err}
	}

	base := res.FinalURL
	if base == "" {
		base = page
	}
	blocks, err := f.parser.Parse(res.HTML, base)
	if err != nil {
		return nil, &philosophy.FetchError{Page: page, Err: err}
	}

	slog.Debug("page fetched",
		"url", page,
		"title", res.Title,
		"engine", res.EngineName,
		"blocks", len(blocks),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return blocks, nil
}
