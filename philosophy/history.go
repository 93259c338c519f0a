package philosophy

// History is the ordered list of pages reached during one run. It is owned
// by a single run and never shared.
type History struct {
	pages []string
	seen  map[string]struct{}
}

// NewHistory creates a History holding the given pages in order.
// Duplicates are dropped.
func NewHistory(pages ...string) *History {
	h := &History{seen: make(map[string]struct{}, len(pages))}
	for _, p := range pages {
		h.Add(p)
	}
	return h
}

// Add appends page unless it is already present. It reports whether the
// page was added.
func (h *History) Add(page string) bool {
	if h.seen == nil {
		h.seen = make(map[string]struct{})
	}
	if _, ok := h.seen[page]; ok {
		return false
	}
	h.seen[page] = struct{}{}
	h.pages = append(h.pages, page)
	return true
}

// Contains reports whether page was already reached. A nil History
// contains nothing.
func (h *History) Contains(page string) bool {
	if h == nil {
		return false
	}
	_, ok := h.seen[page]
	return ok
}

// Len returns the number of pages.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.pages)
}

// Last returns the most recently added page, or "".
func (h *History) Last() string {
	if h.Len() == 0 {
		return ""
	}
	return h.pages[len(h.pages)-1]
}

// Pages returns a copy of the pages in insertion order.
func (h *History) Pages() []string {
	if h == nil {
		return nil
	}
	out := make([]string, len(h.pages))
	copy(out, h.pages)
	return out
}
