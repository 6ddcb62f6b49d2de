package transcript

import (
	"testing"
	"time"

	"career-spark/internal/progress"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func card(agent, status string, start time.Time) *progress.Card {
	return &progress.Card{Agent: agent, Status: status, StartTime: start}
}

func TestBuilder_UserMessagesKeepSubmissionOrder(t *testing.T) {
	b := NewBuilder()
	b.AddUserMessage("first goal")
	b.AddUserMessage("second goal")

	entries := b.Entries()
	if len(entries) != 2 {
		t.Fatalf("len = %d", len(entries))
	}
	if entries[0].Text != "first goal" || entries[1].Text != "second goal" {
		t.Errorf("order wrong: %+v", entries)
	}
	if entries[0].Seq >= entries[1].Seq {
		t.Errorf("seq not monotonic: %d, %d", entries[0].Seq, entries[1].Seq)
	}
}

func TestBuilder_CardSlotIsStable(t *testing.T) {
	b := NewBuilder()
	b.AddUserMessage("goal")

	cards := progress.CardMap{"sup1": card("Supervisor", progress.StatusWorking, base)}
	b.ObserveCards(cards)

	// Later update: same key, new card value plus a new collaborator.
	cards = progress.CardMap{
		"sup1":  card("Supervisor", progress.StatusCompleted, base),
		"call1": card("JobMarketAgent", progress.StatusWorking, base.Add(time.Second)),
	}
	b.ObserveCards(cards)

	entries := b.Entries()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3 (user, sup1, call1)", len(entries))
	}
	if entries[1].CardKey != "sup1" {
		t.Errorf("slot moved: %+v", entries[1])
	}
	if entries[1].Card.Status != progress.StatusCompleted {
		t.Errorf("slot not updated in place: %+v", entries[1].Card)
	}
	if entries[2].CardKey != "call1" {
		t.Errorf("new card not appended last: %+v", entries[2])
	}
}

func TestBuilder_NoDuplicateEntriesForRepeatedObserve(t *testing.T) {
	b := NewBuilder()
	cards := progress.CardMap{"call1": card("JobMarketAgent", progress.StatusWorking, base)}

	for i := 0; i < 5; i++ {
		b.ObserveCards(cards)
	}
	if got := len(b.Entries()); got != 1 {
		t.Errorf("len = %d, want 1", got)
	}
}

func TestBuilder_FreshCardsOrderedByStartTime(t *testing.T) {
	b := NewBuilder()
	cards := progress.CardMap{
		"b-later":   card("CourseCatalogAgent", progress.StatusWorking, base.Add(2*time.Second)),
		"a-earlier": card("JobMarketAgent", progress.StatusWorking, base.Add(time.Second)),
		"sup1":      card("Supervisor", progress.StatusWorking, base),
	}
	b.ObserveCards(cards)

	entries := b.Entries()
	want := []string{"sup1", "a-earlier", "b-later"}
	for i, key := range want {
		if entries[i].CardKey != key {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].CardKey, key)
		}
	}
}

func TestBuilder_NoticeAppendsInline(t *testing.T) {
	b := NewBuilder()
	b.AddUserMessage("goal")
	b.ObserveCards(progress.CardMap{"sup1": card("Supervisor", progress.StatusWorking, base)})
	b.AddNotice("Rate limited")

	entries := b.Entries()
	last := entries[len(entries)-1]
	if last.Kind != KindNotice || last.Text != "Rate limited" {
		t.Errorf("last entry = %+v", last)
	}
}

func TestBuilder_ResetClearsEntriesAndIndex(t *testing.T) {
	b := NewBuilder()
	b.AddUserMessage("goal")
	b.ObserveCards(progress.CardMap{"sup1": card("Supervisor", progress.StatusWorking, base)})

	b.Reset()
	if len(b.Entries()) != 0 {
		t.Fatal("entries survived reset")
	}

	// The order index is rebuilt too: the old key lands in slot 0 again.
	b.ObserveCards(progress.CardMap{"sup1": card("Supervisor", progress.StatusWorking, base)})
	entries := b.Entries()
	if len(entries) != 1 || entries[0].CardKey != "sup1" || entries[0].Seq != 1 {
		t.Errorf("entries after reset = %+v", entries)
	}
}

func TestBuilder_EntriesReturnsCopy(t *testing.T) {
	b := NewBuilder()
	b.AddUserMessage("goal")

	entries := b.Entries()
	entries[0].Text = "mutated"

	if b.Entries()[0].Text != "goal" {
		t.Error("Entries exposed internal slice")
	}
}
