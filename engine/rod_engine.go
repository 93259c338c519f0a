package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/philosophy/config"
)

// RodEngine renders pages in headless Chromium. It is the fallback for
// pages the plain HTTP engine cannot retrieve. The stealth flag
// distinguishes "rod" from "rod-stealth".
type RodEngine struct {
	browser *rod.Browser
	stealth bool
	name    string
}

// NewRodEngine launches a browser according to cfg and connects to it.
func NewRodEngine(cfg config.BrowserConfig) (*RodEngine, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("rod_engine: launch browser: %w", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("rod_engine: connect browser: %w", err)
	}

	name := "rod"
	if cfg.Stealth {
		name = "rod-stealth"
	}
	return &RodEngine{browser: browser, stealth: cfg.Stealth, name: name}, nil
}

func (e *RodEngine) Name() string { return e.name }

// Fetch opens a fresh tab, loads req.URL and returns the rendered HTML.
// The tab is closed before returning.
func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	page, err := e.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%s: open tab: %w", e.name, err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Debug("rod_engine: close tab", "error", closeErr)
		}
	}()

	// Stealth JS only applies to navigations after it is installed.
	if e.stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}
	if len(req.Headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(req.Headers)}.Call(page)
	}

	p := page.Context(ctx)
	if err := p.Navigate(req.URL); err != nil {
		return nil, fmt.Errorf("%s: navigate: %w", e.name, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%s: wait load: %w", e.name, err)
	}

	statusCode := 0
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		statusCode = res.Value.Int()
	}
	if statusCode >= 400 {
		return nil, fmt.Errorf("%s: error status %d", e.name, statusCode)
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("%s: extract html: %w", e.name, err)
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &FetchResult{
		HTML:       rawHTML,
		Title:      evalStringOrEmpty(p, `() => document.title`),
		StatusCode: statusCode,
		FinalURL:   finalURL,
		EngineName: e.name,
	}, nil
}

// Close shuts the browser down.
func (e *RodEngine) Close() error {
	return e.browser.Close()
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
