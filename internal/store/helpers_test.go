package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/custody/internal/model"
)

// testClock hands out strictly increasing timestamps.
type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) next() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func mustUser(t *testing.T, database *sql.DB, id int64, handle, first string) *model.User {
	t.Helper()
	u, err := UpsertUser(context.Background(), database, model.User{ID: id, Handle: handle, FirstName: first}, time.Now())
	if err != nil {
		t.Fatalf("UpsertUser(%d): %v", id, err)
	}
	return u
}

func mustItem(t *testing.T, database *sql.DB, name string, ownerID int64, at time.Time) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, name, ownerID, ownerID, at)
	if err != nil {
		t.Fatalf("CreateItem(%q): %v", name, err)
	}
	return item
}

func mustPropose(t *testing.T, database *sql.DB, itemID string, from, to int64, at time.Time) *model.Transfer {
	t.Helper()
	tr, err := ProposeTransfer(context.Background(), database, itemID, from, to, at)
	if err != nil {
		t.Fatalf("ProposeTransfer(%s, %d -> %d): %v", itemID, from, to, err)
	}
	return tr
}

func mustResolve(t *testing.T, database *sql.DB, transferID, receiverID int64, d model.Decision, at time.Time) *model.Transfer {
	t.Helper()
	tr, err := ResolveTransfer(context.Background(), database, transferID, receiverID, d, at)
	if err != nil {
		t.Fatalf("ResolveTransfer(%d, %s): %v", transferID, d, err)
	}
	return tr
}
