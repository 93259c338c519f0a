package philosophy

import (
	"fmt"
	"io"
	"strings"
)

// Headline returns the one-line summary of the run.
func (r *Result) Headline() string {
	switch r.State {
	case StateSucceeded:
		return fmt.Sprintf("Successfully got to %s from %s!", r.Destination, r.Source)
	case StateFailedLimit:
		return fmt.Sprintf("Unable to get to %s within the limit of %d pages from %s.", r.Destination, r.Limit, r.Source)
	default:
		return fmt.Sprintf("Unable to get to %s from %s.", r.Destination, r.Source)
	}
}

// FailureNote explains a loop or dead end. It is empty for every other
// outcome.
func (r *Result) FailureNote() string {
	switch r.State {
	case StateFailedLoop:
		return fmt.Sprintf("The first valid link on the last listed page leads back to %s, which was already visited.", r.LoopTarget())
	case StateFailedDeadEnd:
		if r.Err != nil {
			return fmt.Sprintf("The last listed page could not be fetched: %v", r.Err)
		}
		return "Could not find a valid link in the last listed page."
	default:
		return ""
	}
}

// Report writes the human-readable account of the run to w.
func (r *Result) Report(w io.Writer) error {
	var b strings.Builder
	b.WriteString(r.Headline())
	b.WriteByte('\n')

	hops := len(r.History) - 1
	if hops < 0 {
		hops = 0
	}
	fmt.Fprintf(&b, "The following route was taken: (%d pages from 1st page)\n", hops)
	for _, page := range r.History {
		b.WriteString(page)
		b.WriteByte('\n')
	}

	if note := r.FailureNote(); note != "" {
		b.WriteString(note)
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the report as a string.
func (r *Result) String() string {
	var b strings.Builder
	_ = r.Report(&b)
	return b.String()
}
