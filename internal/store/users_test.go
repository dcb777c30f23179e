package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/custody/internal/db"
	"github.com/erazemk/custody/internal/model"
)

func TestUpsertAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := UpsertUser(ctx, database, model.User{ID: 1001, Handle: "ivan", FirstName: "Ivan", LastName: "Petrov"}, time.Now())
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if user.Handle != "ivan" {
		t.Errorf("expected handle 'ivan', got %q", user.Handle)
	}

	got, err := GetUser(ctx, database, 1001)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.FirstName != "Ivan" || got.LastName != "Petrov" {
		t.Errorf("expected Ivan Petrov, got %q %q", got.FirstName, got.LastName)
	}

	missing, err := GetUser(ctx, database, 42)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestUpsertUserIsIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	UpsertUser(ctx, database, model.User{ID: 7, Handle: "old", FirstName: "Old", LastName: "Name"}, first)
	UpsertUser(ctx, database, model.User{ID: 7, Handle: "new", FirstName: "New"}, first.Add(time.Hour))

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM users WHERE id = 7`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row, got %d", count)
	}

	got, _ := GetUser(ctx, database, 7)
	if got.Handle != "new" || got.FirstName != "New" || got.LastName != "" {
		t.Errorf("expected latest values, got %+v", got)
	}
	if !got.CreatedAt.Equal(first) {
		t.Errorf("expected created_at to be kept, got %v", got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(first.Add(time.Hour)) {
		t.Errorf("expected updated_at to move, got %v", got.UpdatedAt)
	}

	// The old handle is free again.
	old, _ := GetUserByHandle(ctx, database, "old")
	if old != nil {
		t.Error("expected old handle to be released")
	}
}

func TestUpsertUserDuplicateHandle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	mustUser(t, database, 1, "alice", "Alice")
	mustUser(t, database, 2, "bob", "Bob")

	_, err := UpsertUser(ctx, database, model.User{ID: 2, Handle: "alice", FirstName: "Bob"}, time.Now())
	if !errors.Is(err, model.ErrDuplicateHandle) {
		t.Fatalf("expected ErrDuplicateHandle, got %v", err)
	}

	// Nothing changed.
	bob, _ := GetUser(ctx, database, 2)
	if bob.Handle != "bob" {
		t.Errorf("expected bob to keep his handle, got %q", bob.Handle)
	}
}

func TestUsersWithoutHandle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// Several users may have no handle at all.
	mustUser(t, database, 1, "", "One")
	mustUser(t, database, 2, "", "Two")

	got, err := GetUserByHandle(ctx, database, "")
	if err != nil {
		t.Fatalf("GetUserByHandle: %v", err)
	}
	if got != nil {
		t.Error("expected empty handle to match nobody")
	}
}

func TestGetUserByHandle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	mustUser(t, database, 1, "Alice", "Alice")

	user, err := GetUserByHandle(ctx, database, "Alice")
	if err != nil {
		t.Fatalf("GetUserByHandle: %v", err)
	}
	if user == nil || user.ID != 1 {
		t.Fatalf("expected user 1, got %+v", user)
	}

	// Case-sensitive.
	lower, err := GetUserByHandle(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByHandle: %v", err)
	}
	if lower != nil {
		t.Error("expected case-sensitive match")
	}
}
