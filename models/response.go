package models

// TraceResponse is the response for POST /api/v1/trace.
type TraceResponse struct {
	// Success indicates whether the request was processed. A traversal
	// that fails to reach the destination is still a successful request.
	Success bool `json:"success"`

	// ID identifies this traversal (also used in webhook events).
	ID string `json:"id,omitempty"`

	Source      string `json:"source,omitempty"`
	Destination string `json:"destination,omitempty"`
	Limit       int    `json:"limit,omitempty"`

	// Outcome is one of "success", "loop_failure", "dead_end_failure",
	// "limit_exceeded".
	Outcome string `json:"outcome,omitempty"`

	// State is the terminal state of the traversal state machine.
	State string `json:"state,omitempty"`

	// Reached is true when the destination was reached.
	Reached bool `json:"reached"`

	// Steps is the number of links followed to new pages.
	Steps int `json:"steps"`

	// History lists every page reached, in order.
	History []string `json:"history,omitempty"`

	// Hops describes each fetched page and the link taken from it.
	Hops []Hop `json:"hops,omitempty"`

	// FailureNote explains a loop or dead end.
	FailureNote string `json:"failure_note,omitempty"`

	// FetchError is set when the run stopped on a page that could not be fetched.
	FetchError string `json:"fetch_error,omitempty"`

	// Report is the human-readable account of the run.
	Report string `json:"report,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// Hop is one fetched page of a traversal.
type Hop struct {
	URL string `json:"url"`

	// Decision is "found", "loop_detected" or "none_found".
	Decision string `json:"decision"`

	// Link is the first valid link on the page, if any.
	Link string `json:"link,omitempty"`

	// Context is the Markdown paragraph holding Link (include_context only).
	Context string `json:"context,omitempty"`
}

// TimingInfo provides duration breakdowns in milliseconds.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string   `json:"status"`
	Uptime  string   `json:"uptime"`
	Engines []string `json:"engines"`
	Version string   `json:"version"`
}
