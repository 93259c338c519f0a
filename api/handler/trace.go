package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/use-agent/philosophy/cache"
	"github.com/use-agent/philosophy/config"
	"github.com/use-agent/philosophy/metrics"
	"github.com/use-agent/philosophy/models"
	"github.com/use-agent/philosophy/philosophy"
	"github.com/use-agent/philosophy/webhook"
	"github.com/use-agent/philosophy/wiki"
)

// Trace returns a handler for POST /api/v1/trace.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults from cfg.
//  2. Cache lookup when max_age is set.
//  3. Traverser.Run, one page at a time.
//  4. Build hops (with Markdown context if requested) and the report.
//  5. Record metrics, store in cache, fire the webhook, return 200.
//
// A run that loops, dead-ends or hits its limit is still a 200 response;
// the outcome field says how it ended.
func Trace(tr *philosophy.Traverser, ex *wiki.Excerpter, cfg config.TraceConfig, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.TraceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewTraceError(models.ErrCodeInvalidInput, err.Error(), err), totalStart)
			return
		}
		req.Defaults(cfg.Destination, cfg.Limit, cfg.MaxLimit)

		// ── 2. Cache lookup ─────────────────────────────────────────
		cacheKey := cache.Key(req.Source, req.Destination, req.Limit)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				resp := *cached
				resp.CacheStatus = "hit"
				resp.Timing = models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()}
				c.JSON(http.StatusOK, resp)
				return
			}
		}

		// ── 3. Run ──────────────────────────────────────────────────
		res, err := tr.Run(c.Request.Context(), req.Destination, req.Source, req.Limit)
		if err != nil {
			code := models.ErrCodeInternal
			if errors.Is(err, philosophy.ErrInvalidLimit) || errors.Is(err, philosophy.ErrInvalidPage) {
				code = models.ErrCodeInvalidInput
			}
			respondError(c, models.NewTraceError(code, err.Error(), err), totalStart)
			return
		}
		metrics.ObserveTrace(string(res.Outcome), res.Steps)

		// ── 4. Build response ───────────────────────────────────────
		resp := BuildResponse(res, ex, req.IncludeContext)
		resp.ID = uuid.NewString()
		resp.Timing = models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()}

		slog.Info("trace finished",
			"id", resp.ID,
			"source", res.Source,
			"outcome", res.Outcome,
			"steps", res.Steps,
			"total_ms", resp.Timing.TotalMs,
		)

		// ── 5. Cache store & webhook ────────────────────────────────
		if cc != nil && req.MaxAge > 0 {
			stored := *resp
			cc.Set(cacheKey, &stored)
			resp.CacheStatus = "miss"
		}
		if req.WebhookURL != "" {
			webhook.DeliverAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
				Type:      webhook.EventTraceCompleted,
				TraceID:   resp.ID,
				Timestamp: time.Now().Unix(),
				Data:      resp,
			})
		}

		c.JSON(http.StatusOK, resp)
	}
}

// BuildResponse converts a finished run into its API shape. When
// includeContext is set and ex is non-nil, each hop carries the Markdown
// of the paragraph its link came from.
func BuildResponse(res *philosophy.Result, ex *wiki.Excerpter, includeContext bool) *models.TraceResponse {
	resp := &models.TraceResponse{
		Success:     true,
		Source:      res.Source,
		Destination: res.Destination,
		Limit:       res.Limit,
		Outcome:     string(res.Outcome),
		State:       string(res.State),
		Reached:     res.Reached(),
		Steps:       res.Steps,
		History:     res.History,
		FailureNote: res.FailureNote(),
		Report:      res.String(),
	}
	if res.Err != nil {
		resp.FetchError = res.Err.Error()
	}

	for _, step := range res.Path {
		hop := models.Hop{
			URL:      step.Page,
			Decision: step.Decision.Kind.String(),
			Link:     step.Decision.URL,
		}
		if includeContext && ex != nil && step.Block != nil {
			md, err := ex.Excerpt(*step.Block, step.Page)
			if err != nil {
				slog.Warn("excerpt failed", "page", step.Page, "error", err)
			}
			hop.Context = md
		}
		resp.Hops = append(resp.Hops, hop)
	}
	return resp
}

// respondError maps a TraceError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, start time.Time) {
	var traceErr *models.TraceError
	if !errors.As(err, &traceErr) {
		traceErr = models.NewTraceError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(traceErr), models.TraceResponse{
		Success: false,
		Error:   traceErr.ToDetail(),
		Timing:  models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.TraceError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
