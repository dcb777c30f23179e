package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/custody/internal/db"
)

func TestGetOrCreateSetting_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	calls := 0
	gen := func() (string, error) {
		calls++
		return "generated-secret", nil
	}

	// First call should generate a value.
	secret1, err := GetOrCreateSetting(ctx, database, SettingJWTSecret, gen)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != "generated-secret" {
		t.Fatalf("expected generated secret, got %q", secret1)
	}

	// Second call should return the same value without generating.
	secret2, err := GetOrCreateSetting(ctx, database, SettingJWTSecret, gen)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
	if calls != 1 {
		t.Fatalf("expected generator to run once, ran %d times", calls)
	}
}

func TestGetOrCreateSetting_GeneratorError(t *testing.T) {
	database := db.NewTestDB(t)
	boom := errors.New("boom")

	_, err := GetOrCreateSetting(context.Background(), database, "k", func() (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

func TestSetSettingOverwrites(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := SetSetting(ctx, database, SettingClientSecretHash, "one"); err != nil {
		t.Fatal(err)
	}
	if err := SetSetting(ctx, database, SettingClientSecretHash, "two"); err != nil {
		t.Fatal(err)
	}

	got, err := GetSetting(ctx, database, SettingClientSecretHash)
	if err != nil {
		t.Fatal(err)
	}
	if got != "two" {
		t.Fatalf("expected %q, got %q", "two", got)
	}

	missing, err := GetSetting(ctx, database, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if missing != "" {
		t.Fatalf("expected empty value for missing key, got %q", missing)
	}
}
