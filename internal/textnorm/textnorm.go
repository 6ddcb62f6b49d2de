// Package textnorm normalizes streamed plan text for display. The planner's
// chunk deltas often open with blank lines left over from model formatting;
// trimming them here keeps the accumulated response text clean without
// touching anything after the first real content.
package textnorm

import "strings"

// LeadingBlankLineTrimmer drops leading blank lines from a streaming text
// response. Whitespace-only deltas are buffered until real content appears,
// then released with the blank prefix removed; every later delta passes
// through untouched.
type LeadingBlankLineTrimmer struct {
	seenContent bool
	buffered    strings.Builder
}

// Push ingests one text delta and returns the delta to emit, which is empty
// while only whitespace has been seen.
func (t *LeadingBlankLineTrimmer) Push(delta string) string {
	if delta == "" {
		return ""
	}
	if t.seenContent {
		return delta
	}

	t.buffered.WriteString(delta)
	pending := t.buffered.String()
	if strings.TrimSpace(pending) == "" {
		return ""
	}

	t.seenContent = true
	t.buffered.Reset()
	return TrimLeadingBlankLines(pending)
}

// TrimLeadingBlankLines removes leading blank lines while preserving
// intentional indentation on the first non-empty line.
func TrimLeadingBlankLines(text string) string {
	i := 0
	for i < len(text) {
		j := i
		for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
			j++
		}
		if j >= len(text) {
			return text[i:]
		}

		switch text[j] {
		case '\n':
			i = j + 1
		case '\r':
			if j+1 < len(text) && text[j+1] == '\n' {
				i = j + 2
			} else {
				i = j + 1
			}
		default:
			return text[i:]
		}
	}
	return text[i:]
}
