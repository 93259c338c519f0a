package models

// TraceRequest is the payload for POST /api/v1/trace.
type TraceRequest struct {
	// Source is the page the traversal starts from. Required.
	Source string `json:"source" binding:"required,url"`

	// Destination is the page to reach.
	// Default: the server's configured destination (normally Philosophy).
	Destination string `json:"destination,omitempty" binding:"omitempty,url"`

	// Limit is the number of links the traversal may follow.
	// Default: server setting. Capped by the server's maximum.
	Limit int `json:"limit,omitempty" binding:"omitempty,min=1"`

	// MaxAge allows a cached response no older than this many milliseconds.
	// 0 disables the cache for this request.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// IncludeContext adds a Markdown rendering of the paragraph each link
	// was taken from.
	IncludeContext bool `json:"include_context,omitempty"`

	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults fills unset fields and clamps Limit to maxLimit.
func (r *TraceRequest) Defaults(destination string, limit, maxLimit int) {
	if r.Destination == "" {
		r.Destination = destination
	}
	if r.Limit == 0 {
		r.Limit = limit
	}
	if maxLimit > 0 && r.Limit > maxLimit {
		r.Limit = maxLimit
	}
}
