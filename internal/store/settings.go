package store

import (
	"context"
	"database/sql"
)

// Setting keys.
const (
	SettingJWTSecret        = "jwt_secret"
	SettingClientSecretHash = "client_secret_hash"
)

// GetSetting returns a setting's value, or "" if it is not set.
func GetSetting(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", storageError("getting setting "+key, err)
	}
	return value, nil
}

// SetSetting stores a setting, replacing any previous value.
func SetSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return storageError("storing setting "+key, err)
	}
	return nil
}

// GetOrCreateSetting returns the value stored under key. If there is none, it
// stores the value produced by generate. Uses INSERT OR IGNORE and a re-read so
// that concurrent callers agree on a single value.
func GetOrCreateSetting(ctx context.Context, db *sql.DB, key string, generate func() (string, error)) (string, error) {
	if value, err := GetSetting(ctx, db, key); err != nil || value != "" {
		return value, err
	}

	candidate, err := generate()
	if err != nil {
		return "", err
	}

	_, err = db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		key, candidate,
	)
	if err != nil {
		return "", storageError("storing setting "+key, err)
	}

	return GetSetting(ctx, db, key)
}
