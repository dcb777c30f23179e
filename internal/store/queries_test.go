package store

import (
	"context"
	"slices"
	"testing"

	"github.com/erazemk/custody/internal/db"
	"github.com/erazemk/custody/internal/model"
)

func TestSentAndReceivedTransfers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	clock := newTestClock()

	mustUser(t, database, 1, "u1", "U1")
	mustUser(t, database, 2, "u2", "U2")
	mustUser(t, database, 3, "u3", "U3")
	bike := mustItem(t, database, "Bike", 1, clock.next())
	lamp := mustItem(t, database, "Lamp", 1, clock.next())

	first := mustPropose(t, database, bike.ID, 1, 2, clock.next())
	second := mustPropose(t, database, lamp.ID, 1, 3, clock.next())
	mustResolve(t, database, first.ID, 2, model.Accept, clock.next())

	sent, err := ListSentTransfers(ctx, database, 1)
	if err != nil {
		t.Fatalf("ListSentTransfers: %v", err)
	}
	if len(sent) != 2 || sent[0].ID != second.ID || sent[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", sent)
	}
	if sent[1].Status != model.StatusAccepted || sent[1].ItemName != "Bike" || sent[1].ReceiverHandle != "u2" {
		t.Errorf("unexpected joined transfer: %+v", sent[1])
	}

	received, _ := ListReceivedTransfers(ctx, database, 3)
	if len(received) != 1 || received[0].SenderHandle != "u1" || received[0].Status != model.StatusPending {
		t.Errorf("unexpected received transfers: %+v", received)
	}

	if received, _ := ListReceivedTransfers(ctx, database, 1); len(received) != 0 {
		t.Errorf("expected nothing received by u1, got %d", len(received))
	}
}

func TestPendingTransfersOldestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	clock := newTestClock()

	mustUser(t, database, 1, "u1", "U1")
	mustUser(t, database, 2, "u2", "U2")
	a := mustItem(t, database, "A", 1, clock.next())
	b := mustItem(t, database, "B", 1, clock.next())
	c := mustItem(t, database, "C", 1, clock.next())

	ta := mustPropose(t, database, a.ID, 1, 2, clock.next())
	tb := mustPropose(t, database, b.ID, 1, 2, clock.next())
	tc := mustPropose(t, database, c.ID, 1, 2, clock.next())
	mustResolve(t, database, tb.ID, 2, model.Reject, clock.next())

	pending, err := ListPendingTransfers(ctx, database, 2)
	if err != nil {
		t.Fatalf("ListPendingTransfers: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != ta.ID || pending[1].ID != tc.ID {
		t.Fatalf("expected [%d %d], got %+v", ta.ID, tc.ID, pending)
	}

	// Senders have nothing to decide.
	if pending, _ := ListPendingTransfers(ctx, database, 1); len(pending) != 0 {
		t.Errorf("expected no pending transfers for sender, got %d", len(pending))
	}
}

func TestItemHistoryUnknownItem(t *testing.T) {
	database := db.NewTestDB(t)

	history, err := GetItemHistory(context.Background(), database, "ABCDE12345")
	if err != nil {
		t.Fatalf("GetItemHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d entries", len(history))
	}
}

func TestRecentContacts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	clock := newTestClock()

	mustUser(t, database, 1, "u1", "U1")
	mustUser(t, database, 2, "u2", "U2")
	mustUser(t, database, 3, "u3", "U3")
	mustUser(t, database, 4, "u4", "U4")
	mustUser(t, database, 5, "u5", "U5")
	mustUser(t, database, 6, "", "Nameless")

	send := func(from, to int64) {
		item := mustItem(t, database, "Thing", from, clock.next())
		mustPropose(t, database, item.ID, from, to, clock.next())
	}

	send(1, 2)
	send(1, 3)
	send(4, 1) // incoming counts too
	send(1, 2) // u2 again, must not repeat
	send(1, 6) // no handle
	send(1, 5)

	contacts, err := ListRecentContacts(ctx, database, 1, 0)
	if err != nil {
		t.Fatalf("ListRecentContacts: %v", err)
	}
	got := handles(contacts)
	want := []string{"u5", "u2", "u4"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	contacts, _ = ListRecentContacts(ctx, database, 1, 10)
	want = []string{"u5", "u2", "u4", "u3"}
	if got := handles(contacts); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	contacts, _ = ListRecentContacts(ctx, database, 1, 1)
	if got := handles(contacts); !slices.Equal(got, []string{"u5"}) {
		t.Errorf("expected [u5], got %v", got)
	}
	if contacts[0].LastInteraction.IsZero() {
		t.Error("expected last interaction to be set")
	}

	// From the other side, u1 is the only contact.
	contacts, _ = ListRecentContacts(ctx, database, 4, 0)
	if got := handles(contacts); !slices.Equal(got, []string{"u1"}) {
		t.Errorf("expected [u1], got %v", got)
	}

	if contacts, _ := ListRecentContacts(ctx, database, 99, 0); len(contacts) != 0 {
		t.Errorf("expected no contacts for unknown user, got %d", len(contacts))
	}
}

func handles(contacts []model.Contact) []string {
	out := make([]string, len(contacts))
	for i, c := range contacts {
		out[i] = c.Handle
	}
	return out
}
