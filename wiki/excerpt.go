package wiki

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"

	"github.com/use-agent/philosophy/philosophy"
)

// Excerpter renders content blocks as Markdown so a reader can see the
// sentence a link was taken from. It is safe for concurrent use.
type Excerpter struct {
	conv *converter.Converter
}

// NewExcerpter creates an Excerpter.
//
//   - base plugin: strips script, style, comments and similar noise.
//   - commonmark plugin: links, emphasis and the rest of plain Markdown.
func NewExcerpter() *Excerpter {
	return &Excerpter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Excerpt converts block to Markdown. Relative links are made absolute
// against pageURL's origin. Blocks without HTML yield "".
func (e *Excerpter) Excerpt(block philosophy.ContentBlock, pageURL string) (string, error) {
	if block.HTML == "" {
		return "", nil
	}
	md, err := e.conv.ConvertString(block.HTML, converter.WithDomain(origin(pageURL)))
	if err != nil {
		return "", fmt.Errorf("wiki: excerpt: %w", err)
	}
	return strings.TrimSpace(md), nil
}

func origin(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return pageURL
	}
	return u.Scheme + "://" + u.Host
}
