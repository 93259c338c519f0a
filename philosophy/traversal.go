package philosophy

import (
	"context"
	"errors"
	"log/slog"
)

// Step records what happened on one fetched page.
type Step struct {
	// Page is the page that was fetched.
	Page string

	// Decision is the link selection verdict for Page.
	Decision Decision

	// Block is the paragraph holding the decisive link, if any.
	Block *ContentBlock
}

// Result is the outcome of one run.
type Result struct {
	Destination string
	Source      string
	Limit       int

	State   State
	Outcome Outcome

	// Steps is the number of links followed to new pages.
	Steps int

	// History lists every page reached, in order. On success the
	// destination is the last entry.
	History []string

	// Path holds one Step per fetched page.
	Path []Step

	// Err is set when the run ended because a page could not be fetched.
	// Such runs end in StateFailedDeadEnd.
	Err error
}

// Reached reports whether the destination was reached.
func (r *Result) Reached() bool { return r.State == StateSucceeded }

// LoopTarget returns the already-visited page the run looped back to, or "".
func (r *Result) LoopTarget() string {
	if r.State != StateFailedLoop || len(r.Path) == 0 {
		return ""
	}
	return r.Path[len(r.Path)-1].Decision.URL
}

// Option configures a Traverser.
type Option func(*Traverser)

// WithObserver registers fn to be called after every fetched page.
func WithObserver(fn func(Step)) Option {
	return func(t *Traverser) { t.observer = fn }
}

// WithLogger sets the logger used for per-step debug output.
func WithLogger(l *slog.Logger) Option {
	return func(t *Traverser) { t.logger = l }
}

// Traverser follows first links from a source page until it reaches the
// destination, loops, dead-ends or runs out of steps. A Traverser holds
// no per-run state and may be shared between goroutines as long as its
// Fetcher can.
type Traverser struct {
	fetcher  Fetcher
	observer func(Step)
	logger   *slog.Logger
}

// NewTraverser creates a Traverser that loads pages through f.
func NewTraverser(f Fetcher, opts ...Option) *Traverser {
	t := &Traverser{fetcher: f, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// run is the mutable state of a single traversal.
type run struct {
	result  *Result
	history *History
	current string
}

func (r *run) finish(s State) *Result {
	r.result.State = s
	r.result.Outcome = s.Outcome()
	r.result.History = r.history.Pages()
	return r.result
}

// Run starts at source and follows first valid links. Pages are fetched
// strictly one after another. The returned error is non-nil only for an
// invalid invocation; every fetch failure is reported through the Result.
func (t *Traverser) Run(ctx context.Context, destination, source string, limit int) (*Result, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if !isAbsolute(source) || !isAbsolute(destination) {
		return nil, ErrInvalidPage
	}

	r := &run{
		result: &Result{
			Destination: destination,
			Source:      source,
			Limit:       limit,
			State:       StateRunning,
		},
		history: NewHistory(source),
		current: source,
	}

	if source == destination {
		return r.finish(StateSucceeded), nil
	}

	for {
		if r.result.Steps >= limit {
			t.logger.Debug("step limit reached", "limit", limit, "next", r.current)
			return r.finish(StateFailedLimit), nil
		}

		// The source is recorded before the loop; every later page is
		// recorded the first time it is fetched.
		r.history.Add(r.current)

		blocks, err := t.fetcher.Fetch(ctx, r.current)
		if err != nil {
			var fe *FetchError
			if !errors.As(err, &fe) {
				err = &FetchError{Page: r.current, Err: err}
			}
			t.logger.Warn("page fetch failed", "page", r.current, "error", err)
			r.result.Err = err
			t.record(r, Step{Page: r.current, Decision: Decision{Kind: NoneFound, Block: -1, Node: -1}})
			return r.finish(StateFailedDeadEnd), nil
		}

		d := SelectFirstValidLink(blocks, r.current, r.history)
		step := Step{Page: r.current, Decision: d}
		if d.Kind != NoneFound {
			step.Block = &blocks[d.Block]
		}
		t.record(r, step)

		switch d.Kind {
		case NoneFound:
			return r.finish(StateFailedDeadEnd), nil
		case LoopDetected:
			return r.finish(StateFailedLoop), nil
		}

		if d.URL == destination {
			r.history.Add(d.URL)
			return r.finish(StateSucceeded), nil
		}
		r.current = d.URL
		r.result.Steps++
	}
}

func (t *Traverser) record(r *run, s Step) {
	r.result.Path = append(r.result.Path, s)
	t.logger.Debug("page processed",
		"page", s.Page,
		"decision", s.Decision.Kind.String(),
		"link", s.Decision.URL,
		"steps", r.result.Steps,
	)
	if t.observer != nil {
		t.observer(s)
	}
}
