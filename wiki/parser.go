package wiki

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/philosophy/philosophy"
)

// DefaultParagraphSelector matches the body paragraphs of a MediaWiki
// article.
const DefaultParagraphSelector = "#mw-content-text p"

// Parser turns article HTML into content blocks. It is safe for
// concurrent use.
type Parser struct {
	sel cascadia.Selector
}

// NewParser compiles the CSS selector used to pick paragraphs. An empty
// selector means DefaultParagraphSelector.
func NewParser(selector string) (*Parser, error) {
	if selector == "" {
		selector = DefaultParagraphSelector
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("wiki: compile selector %q: %w", selector, err)
	}
	return &Parser{sel: sel}, nil
}

// Parse returns one block per matched paragraph, in document order. Only
// the paragraph's direct children become nodes: text stays text, a bare
// <a href> becomes a link resolved against pageURL, and any other element
// (including red links to missing pages) becomes markup. Paragraphs
// without children are dropped.
func (p *Parser) Parse(rawHTML, pageURL string) ([]philosophy.ContentBlock, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("wiki: parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("wiki: parse html: %w", err)
	}

	var blocks []philosophy.ContentBlock
	doc.FindMatcher(p.sel).Each(func(_ int, s *goquery.Selection) {
		para := s.Get(0)
		var nodes []philosophy.Node
		for c := para.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				nodes = append(nodes, philosophy.Text(c.Data))
			case html.ElementNode:
				nodes = append(nodes, elementNode(c, base))
			}
		}
		if len(nodes) == 0 {
			return
		}
		outer, _ := goquery.OuterHtml(s)
		blocks = append(blocks, philosophy.ContentBlock{Nodes: nodes, HTML: outer})
	})
	return blocks, nil
}

func elementNode(n *html.Node, base *url.URL) philosophy.Node {
	text := nodeText(n)
	if n.Data != "a" || hasClass(n, "new") {
		return philosophy.Markup(text)
	}
	href, ok := attr(n, "href")
	if !ok {
		return philosophy.Markup(text)
	}
	return philosophy.Link(resolve(base, href), text)
}

// resolve returns href as an absolute URL, or "" if it cannot be resolved.
func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if !abs.IsAbs() || abs.Host == "" {
		return ""
	}
	return abs.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
