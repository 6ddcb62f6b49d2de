package stream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// dataPrefix marks event-carrying lines. Everything else on the wire
// (keep-alive comments, blank separators) is ignored.
const dataPrefix = "data:"

// Decode parses one framed line into a StreamEvent.
//
// It returns (nil, nil) for lines that are not event candidates: blanks,
// keep-alives, and anything without the "data:" prefix. It returns a non-nil
// error for a candidate line whose payload is malformed; callers log the
// diagnostic and keep going, a bad line never aborts the stream.
func Decode(line string) (*StreamEvent, error) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, dataPrefix) {
		return nil, nil
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == "" {
		return nil, nil
	}

	var ev StreamEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return nil, fmt.Errorf("malformed event payload: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("event payload missing type discriminant")
	}
	return &ev, nil
}
