// Package transcript projects progress cards and run events into one
// chronologically stable message list for display. Ordering is owned here,
// not by the card map: a monotonic ingestion sequence fixes display order
// while the protocol key keeps identity, so a card updates its original slot
// instead of appearing twice.
package transcript

import (
	"sort"

	"career-spark/internal/progress"
)

// Entry kinds in a transcript.
const (
	KindUser   = "user"
	KindCard   = "agent_card"
	KindNotice = "notice"
)

// Entry is one slot in the ordered transcript. Text carries user messages and
// notices; Card and CardKey carry agent cards.
type Entry struct {
	Kind    string         `json:"kind"`
	Seq     int            `json:"seq"`
	Text    string         `json:"text,omitempty"`
	CardKey string         `json:"card_key,omitempty"`
	Card    *progress.Card `json:"card,omitempty"`
}

// Builder accumulates transcript entries for one run. It keeps an auxiliary
// first-seen index from card key to slot, reconciled against the current card
// map on every change, so later card updates mutate their slot in place.
type Builder struct {
	entries []Entry
	slots   map[string]int
	nextSeq int
}

// NewBuilder creates an empty transcript builder.
func NewBuilder() *Builder {
	return &Builder{slots: make(map[string]int)}
}

// AddUserMessage appends a user message; submission order is retained.
func (b *Builder) AddUserMessage(text string) {
	b.entries = append(b.entries, Entry{Kind: KindUser, Seq: b.next(), Text: text})
}

// AddNotice appends an inline system message, e.g. a run error surfaced to
// the reader.
func (b *Builder) AddNotice(text string) {
	b.entries = append(b.entries, Entry{Kind: KindNotice, Seq: b.next(), Text: text})
}

// ObserveCards reconciles the transcript with the current card map. Known
// keys update their existing slot; keys seen for the first time are appended
// after all current entries, ordered by card start time (then key, so the
// result is deterministic when several cards appear in one snapshot).
func (b *Builder) ObserveCards(cards progress.CardMap) {
	var fresh []string
	for key := range cards {
		if idx, ok := b.slots[key]; ok {
			b.entries[idx].Card = cards[key]
			continue
		}
		fresh = append(fresh, key)
	}

	sort.Slice(fresh, func(i, j int) bool {
		a, z := cards[fresh[i]], cards[fresh[j]]
		if !a.StartTime.Equal(z.StartTime) {
			return a.StartTime.Before(z.StartTime)
		}
		return fresh[i] < fresh[j]
	})

	for _, key := range fresh {
		b.slots[key] = len(b.entries)
		b.entries = append(b.entries, Entry{
			Kind:    KindCard,
			Seq:     b.next(),
			CardKey: key,
			Card:    cards[key],
		})
	}
}

// Entries returns a copy of the current transcript in display order.
func (b *Builder) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Reset discards all entries and the first-seen index, ready for a new run.
func (b *Builder) Reset() {
	b.entries = nil
	b.slots = make(map[string]int)
	b.nextSeq = 0
}

func (b *Builder) next() int {
	b.nextSeq++
	return b.nextSeq
}
