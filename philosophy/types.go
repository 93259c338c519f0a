package philosophy

import (
	"context"
	"errors"
	"fmt"
)

// NodeKind classifies an inline node of a content block.
type NodeKind int

const (
	// NodeText is a run of plain text directly inside the paragraph.
	NodeText NodeKind = iota

	// NodeLink is a bare hyperlink directly inside the paragraph.
	NodeLink

	// NodeMarkup is any other element (bold, italics, citations, spans).
	// Its text does not count towards parenthesis depth and it is never
	// a candidate link.
	NodeMarkup
)

func (k NodeKind) String() string {
	switch k {
	case NodeText:
		return "text"
	case NodeLink:
		return "link"
	case NodeMarkup:
		return "markup"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Node is one inline node of a ContentBlock.
type Node struct {
	Kind NodeKind

	// Text is the node's text content.
	Text string

	// Target is the absolute URL of a NodeLink, or "" if the href could
	// not be resolved.
	Target string
}

// ContentBlock is one paragraph of a page body, in document order.
type ContentBlock struct {
	Nodes []Node

	// HTML is the paragraph's raw markup. Optional; only used for excerpts.
	HTML string
}

// Text returns a text node.
func Text(s string) Node { return Node{Kind: NodeText, Text: s} }

// Link returns a hyperlink node pointing at target.
func Link(target, text string) Node { return Node{Kind: NodeLink, Target: target, Text: text} }

// Markup returns a node for a formatted element.
func Markup(text string) Node { return Node{Kind: NodeMarkup, Text: text} }

// Block builds a ContentBlock from nodes.
func Block(nodes ...Node) ContentBlock { return ContentBlock{Nodes: nodes} }

// Fetcher retrieves the body paragraphs of a page. Implementations return a
// *FetchError when the page cannot be retrieved or parsed.
type Fetcher interface {
	Fetch(ctx context.Context, page string) ([]ContentBlock, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context, page string) ([]ContentBlock, error)

func (f FetchFunc) Fetch(ctx context.Context, page string) ([]ContentBlock, error) {
	return f(ctx, page)
}

// FetchError reports a page that could not be retrieved or parsed.
type FetchError struct {
	Page string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

var (
	// ErrInvalidLimit is returned by Run for a step limit below 1.
	ErrInvalidLimit = errors.New("philosophy: step limit must be positive")

	// ErrInvalidPage is returned by Run when the source or destination is
	// not an absolute URL.
	ErrInvalidPage = errors.New("philosophy: page must be an absolute URL")
)

// DecisionKind is the verdict of link selection on one page.
type DecisionKind int

const (
	NoneFound DecisionKind = iota
	Found
	LoopDetected
)

func (k DecisionKind) String() string {
	switch k {
	case NoneFound:
		return "none_found"
	case Found:
		return "found"
	case LoopDetected:
		return "loop_detected"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(k))
	}
}

// Decision is the result of SelectFirstValidLink. For Found and
// LoopDetected, URL is the accepted candidate and Block/Node locate it.
type Decision struct {
	Kind  DecisionKind
	URL   string
	Block int
	Node  int
}

// State is a state of the traversal state machine.
type State string

const (
	StateRunning       State = "running"
	StateSucceeded     State = "succeeded"
	StateFailedLoop    State = "failed_loop"
	StateFailedDeadEnd State = "failed_dead_end"
	StateFailedLimit   State = "failed_limit"
)

// Terminal reports whether s ends a run.
func (s State) Terminal() bool { return s != StateRunning }

// Outcome classifies a finished run.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeLoopFailure   Outcome = "loop_failure"
	OutcomeDeadEnd       Outcome = "dead_end_failure"
	OutcomeLimitExceeded Outcome = "limit_exceeded"
)

// Outcome maps a terminal state to its outcome. It returns "" for
// StateRunning.
func (s State) Outcome() Outcome {
	switch s {
	case StateSucceeded:
		return OutcomeSuccess
	case StateFailedLoop:
		return OutcomeLoopFailure
	case StateFailedDeadEnd:
		return OutcomeDeadEnd
	case StateFailedLimit:
		return OutcomeLimitExceeded
	default:
		return ""
	}
}
