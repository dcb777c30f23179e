package db

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	got := dsn("/tmp/custody.sqlite3")
	if !strings.HasPrefix(got, "file:/tmp/custody.sqlite3?") {
		t.Errorf("unexpected dsn prefix: %q", got)
	}
	for _, want := range []string{"_txlock=immediate", "_pragma=foreign_keys%28ON%29", "_pragma=busy_timeout%2810000%29"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn %q missing %q", got, want)
		}
	}

	got = dsn("file:x.db?mode=rwc")
	if !strings.HasPrefix(got, "file:x.db?mode=rwc&") {
		t.Errorf("expected existing query to be extended, got %q", got)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "schema.sqlite3"), 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := EnsureSchema(database); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}

	var fk int
	if err := database.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("reading foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}
}
