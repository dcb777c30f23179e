package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Timestamps are Unix nanoseconds.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id          INTEGER PRIMARY KEY,
    handle      TEXT UNIQUE,
    first_name  TEXT NOT NULL DEFAULT '',
    last_name   TEXT,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id          TEXT PRIMARY KEY CHECK (length(id) = 10),
    name        TEXT NOT NULL CHECK (name <> ''),
    creator_id  INTEGER NOT NULL REFERENCES users(id),
    owner_id    INTEGER NOT NULL REFERENCES users(id),
    created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id);
CREATE INDEX IF NOT EXISTS idx_items_creator ON items(creator_id);

CREATE TABLE IF NOT EXISTS transfers (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id      TEXT NOT NULL REFERENCES items(id),
    sender_id    INTEGER NOT NULL REFERENCES users(id),
    receiver_id  INTEGER NOT NULL REFERENCES users(id),
    status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
    created_at   INTEGER NOT NULL,
    resolved_at  INTEGER
);

CREATE INDEX IF NOT EXISTS idx_transfers_item ON transfers(item_id, created_at);
CREATE INDEX IF NOT EXISTS idx_transfers_sender ON transfers(sender_id);
CREATE INDEX IF NOT EXISTS idx_transfers_receiver ON transfers(receiver_id, status);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at INTEGER NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist,
// then applies migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return Migrate(db)
}
