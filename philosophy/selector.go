package philosophy

import (
	"net/url"
	"strings"
)

// SelectFirstValidLink scans blocks in document order for the first link
// that lies outside parentheses and passes IsValidTarget. That link alone
// decides the result: LoopDetected if history already contains it, Found
// otherwise. Later links are never looked at.
//
// Parenthesis depth restarts at zero for every block. Only NodeText nodes
// move the depth; NodeMarkup is ignored entirely.
func SelectFirstValidLink(blocks []ContentBlock, currentPage string, history *History) Decision {
	for bi, block := range blocks {
		depth := 0
		for ni, node := range block.Nodes {
			switch node.Kind {
			case NodeText:
				depth += parenDelta(node.Text)
			case NodeLink:
				if depth > 0 || !isAbsolute(node.Target) {
					continue
				}
				if !IsValidTarget(node.Target, currentPage) {
					continue
				}
				d := Decision{Kind: Found, URL: node.Target, Block: bi, Node: ni}
				if history.Contains(node.Target) {
					d.Kind = LoopDetected
				}
				return d
			}
		}
	}
	return Decision{Kind: NoneFound, Block: -1, Node: -1}
}

// parenDelta returns the number of '(' minus the number of ')' in s.
func parenDelta(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case '(':
			n++
		case ')':
			n--
		}
	}
	return n
}

// IsValidTarget reports whether target may be followed from currentPage.
// Links back to the current page (fragments ignored) and links to another
// host are rejected. Both URLs are compared after parsing, so a target
// whose path merely extends the current one is not a self-link.
func IsValidTarget(target, currentPage string) bool {
	t, err := parseAbsolute(target)
	if err != nil {
		return false
	}
	cur, err := parseAbsolute(currentPage)
	if err != nil {
		return false
	}

	if !strings.EqualFold(t.Host, cur.Host) {
		return false
	}
	return !sameDocument(t, cur)
}

func sameDocument(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) &&
		strings.EqualFold(a.Host, b.Host) &&
		normalPath(a) == normalPath(b) &&
		a.RawQuery == b.RawQuery
}

func normalPath(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

func isAbsolute(raw string) bool {
	_, err := parseAbsolute(raw)
	return err == nil
}

type notAbsoluteError string

func (e notAbsoluteError) Error() string { return "not an absolute http(s) URL: " + string(e) }

func parseAbsolute(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, notAbsoluteError(raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, notAbsoluteError(raw)
	}
	return u, nil
}
