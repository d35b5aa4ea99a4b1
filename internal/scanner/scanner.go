package scanner

import "strings"

// DepthTracker is a small state machine that tracks nesting depth of a
// brace/bracket delimiter language, optionally skipping delimiters that
// occur inside quoted spans. It is shared by the record extractor and
// the top-level splitter so both agree on what "top level" means.
//
// Quoted spans are opened by a single or double quote and closed by the
// same character. There is no escape handling: a quote character cannot
// appear inside its own quoted span.
type DepthTracker struct {
	// QuoteAware controls whether delimiters inside quoted spans are
	// counted. When false, every brace adjusts depth, including braces
	// inside string values, so a string containing a literal brace
	// corrupts depth tracking.
	QuoteAware bool

	depth     int
	inQuote   bool
	quoteChar byte
}

// Step feeds one byte through the state machine.
func (t *DepthTracker) Step(c byte) {
	if t.QuoteAware {
		if t.inQuote {
			if c == t.quoteChar {
				t.inQuote = false
			}
			return
		}
		if c == '"' || c == '\'' {
			t.inQuote = true
			t.quoteChar = c
			return
		}
	}
	switch c {
	case '{', '[':
		t.depth++
	case '}', ']':
		t.depth--
	}
}

// StepString feeds every byte of s through the state machine.
func (t *DepthTracker) StepString(s string) {
	for i := 0; i < len(s); i++ {
		t.Step(s[i])
	}
}

// Depth returns the current nesting depth.
func (t *DepthTracker) Depth() int {
	return t.depth
}

// InQuote reports whether the tracker is currently inside a quoted span.
// Always false when the tracker is not quote-aware.
func (t *DepthTracker) InQuote() bool {
	return t.inQuote
}

// Reset returns the tracker to its initial state, keeping the mode.
func (t *DepthTracker) Reset() {
	t.depth = 0
	t.inQuote = false
	t.quoteChar = 0
}

// SplitTopLevel splits s into segments separated by commas that occur
// at nesting depth 0 and outside any quoted span. Commas inside braces,
// brackets, or quotes are preserved verbatim inside their segment.
// Segments are trimmed; a final segment that trims to empty is dropped.
func SplitTopLevel(s string) []string {
	var (
		segments []string
		current  strings.Builder
		tracker  = DepthTracker{QuoteAware: true}
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ',' && tracker.Depth() == 0 && !tracker.InQuote() {
			segments = append(segments, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		tracker.Step(c)
		current.WriteByte(c)
	}
	if last := strings.TrimSpace(current.String()); last != "" {
		segments = append(segments, last)
	}
	return segments
}
