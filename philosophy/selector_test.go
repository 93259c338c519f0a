package philosophy

import "testing"

const (
	wiki     = "https://en.wikipedia.org/wiki/"
	javaPage = wiki + "Java_(programming_language)"
)

func TestSelectFirstValidLink(t *testing.T) {
	tests := []struct {
		name    string
		blocks  []ContentBlock
		history []string
		want    Decision
	}{
		{
			name: "first plain link",
			blocks: []ContentBlock{
				Block(Text("Java is a "), Link(wiki+"Programming_language", "programming language"), Text(" and "), Link(wiki+"Island", "island")),
			},
			want: Decision{Kind: Found, URL: wiki + "Programming_language", Block: 0, Node: 1},
		},
		{
			name: "link inside parentheses skipped",
			blocks: []ContentBlock{
				Block(Text("Java ("), Link(wiki+"Help:IPA", "IPA"), Text(") is a "), Link(wiki+"Language", "language")),
			},
			want: Decision{Kind: Found, URL: wiki + "Language", Block: 0, Node: 3},
		},
		{
			name: "nested parentheses",
			blocks: []ContentBlock{
				Block(Text("a ((b) "), Link(wiki+"Inner", "inner"), Text(") then "), Link(wiki+"Outer", "outer")),
			},
			want: Decision{Kind: Found, URL: wiki + "Outer", Block: 0, Node: 3},
		},
		{
			name: "unclosed parenthesis hides rest of block",
			blocks: []ContentBlock{
				Block(Text("see ("), Link(wiki+"A", "a"), Text(" and "), Link(wiki+"B", "b")),
			},
			want: Decision{Kind: NoneFound, Block: -1, Node: -1},
		},
		{
			name: "block boundary resets depth",
			blocks: []ContentBlock{
				Block(Text("unbalanced ((("), Link(wiki+"Hidden", "hidden")),
				Block(Text("fresh "), Link(wiki+"Visible", "visible")),
			},
			want: Decision{Kind: Found, URL: wiki + "Visible", Block: 1, Node: 1},
		},
		{
			name: "negative depth still allows links",
			blocks: []ContentBlock{
				Block(Text("closing) "), Link(wiki+"After", "after")),
			},
			want: Decision{Kind: Found, URL: wiki + "After", Block: 0, Node: 1},
		},
		{
			name: "markup text does not move depth and is never a candidate",
			blocks: []ContentBlock{
				Block(Markup("("), Markup("Italic link"), Link(wiki+"Plain", "plain")),
			},
			want: Decision{Kind: Found, URL: wiki + "Plain", Block: 0, Node: 2},
		},
		{
			name: "unresolvable link skipped",
			blocks: []ContentBlock{
				Block(Link("", "broken"), Link("/wiki/Relative", "relative"), Link(wiki+"Good", "good")),
			},
			want: Decision{Kind: Found, URL: wiki + "Good", Block: 0, Node: 2},
		},
		{
			name: "self link and external link skipped",
			blocks: []ContentBlock{
				Block(Link(javaPage, "self"), Link("https://www.oracle.com/java/", "oracle"), Link(wiki+"Computer", "computer")),
			},
			want: Decision{Kind: Found, URL: wiki + "Computer", Block: 0, Node: 2},
		},
		{
			name: "first accepted link loops even if later one is fresh",
			blocks: []ContentBlock{
				Block(Text("a "), Link(wiki+"Seen", "seen"), Text(" b "), Link(wiki+"Fresh", "fresh")),
			},
			history: []string{javaPage, wiki + "Seen"},
			want:    Decision{Kind: LoopDetected, URL: wiki + "Seen", Block: 0, Node: 1},
		},
		{
			name: "rejected self link before a loop does not mask it",
			blocks: []ContentBlock{
				Block(Link(javaPage, "self"), Link(wiki+"Seen", "seen")),
			},
			history: []string{javaPage, wiki + "Seen"},
			want:    Decision{Kind: LoopDetected, URL: wiki + "Seen", Block: 0, Node: 1},
		},
		{
			name: "no links",
			blocks: []ContentBlock{
				Block(Text("Just text.")),
				Block(Markup("bold"), Text("(more)")),
			},
			want: Decision{Kind: NoneFound, Block: -1, Node: -1},
		},
		{
			name:   "no blocks",
			blocks: nil,
			want:   Decision{Kind: NoneFound, Block: -1, Node: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(javaPage)
			for _, p := range tt.history {
				h.Add(p)
			}
			got := SelectFirstValidLink(tt.blocks, javaPage, h)
			if got != tt.want {
				t.Errorf("SelectFirstValidLink() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSelectFirstValidLink_NilHistory(t *testing.T) {
	blocks := []ContentBlock{Block(Link(wiki+"Next", "next"))}
	got := SelectFirstValidLink(blocks, javaPage, nil)
	if got.Kind != Found || got.URL != wiki+"Next" {
		t.Errorf("got %+v, want Found %s", got, wiki+"Next")
	}
}

func TestIsValidTarget(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		current string
		want    bool
	}{
		{"internal link", wiki + "Philosophy", javaPage, true},
		{"self link", javaPage, javaPage, false},
		{"self link with fragment", javaPage + "#History", javaPage, false},
		{"self link escaped parens", wiki + "Java_%28programming_language%29", javaPage, false},
		{"self link host case", "https://EN.wikipedia.org/wiki/Java_(programming_language)", javaPage, false},
		{"disambiguation suffix", wiki + "Java_(programming_language)_(disambiguation)", javaPage, true},
		{"current page is a prefix", wiki + "Java", wiki + "Jav", true},
		{"external host", "https://www.oracle.com/java/", javaPage, false},
		{"other language edition", "https://de.wikipedia.org/wiki/Java", javaPage, false},
		{"plain http same host", "http://en.wikipedia.org/wiki/Coffee", javaPage, true},
		{"mailto", "mailto:someone@example.com", javaPage, false},
		{"relative", "/wiki/Coffee", javaPage, false},
		{"empty", "", javaPage, false},
		{"unparsable current", wiki + "Coffee", "::", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidTarget(tt.target, tt.current); got != tt.want {
				t.Errorf("IsValidTarget(%q, %q) = %v, want %v", tt.target, tt.current, got, tt.want)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory("a", "b", "a")
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	if h.Add("b") {
		t.Error("Add of existing page should report false")
	}
	if !h.Add("c") {
		t.Error("Add of new page should report true")
	}
	if got := h.Last(); got != "c" {
		t.Errorf("Last() = %q, want c", got)
	}

	pages := h.Pages()
	want := []string{"a", "b", "c"}
	if len(pages) != len(want) {
		t.Fatalf("Pages() = %v, want %v", pages, want)
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("Pages()[%d] = %q, want %q", i, pages[i], want[i])
		}
	}

	pages[0] = "mutated"
	if h.Pages()[0] != "a" {
		t.Error("Pages() must return a copy")
	}

	var nilHistory *History
	if nilHistory.Contains("a") || nilHistory.Len() != 0 {
		t.Error("nil History should be empty")
	}
}
