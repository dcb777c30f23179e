package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/erazemk/custody/internal/model"
)

const userColumns = `id, handle, first_name, last_name, created_at, updated_at`

// UpsertUser inserts the user if absent and otherwise overwrites the handle,
// first name and last name. A handle held by a different user fails with
// model.ErrDuplicateHandle and changes nothing.
func UpsertUser(ctx context.Context, db *sql.DB, u model.User, at time.Time) (*model.User, error) {
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, handle, first_name, last_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     handle = excluded.handle,
		     first_name = excluded.first_name,
		     last_name = excluded.last_name,
		     updated_at = excluded.updated_at`,
		u.ID, nullString(u.Handle), u.FirstName, nullString(u.LastName), toNanos(at), toNanos(at),
	)
	if isUniqueViolation(err) {
		return nil, model.ErrDuplicateHandle
	}
	if err != nil {
		return nil, storageError("upserting user", err)
	}

	return GetUser(ctx, db, u.ID)
}

// GetUser returns a user by ID, or nil if there is none.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("getting user", err)
	}
	return u, nil
}

// GetUserByHandle returns the user holding handle (exact, case-sensitive match),
// or nil if there is none.
func GetUserByHandle(ctx context.Context, db *sql.DB, handle string) (*model.User, error) {
	if handle == "" {
		return nil, nil
	}
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE handle = ?`, handle,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("getting user by handle", err)
	}
	return u, nil
}

// userExists reports whether a user row exists, inside q's transaction if any.
func userExists(ctx context.Context, q querier, id int64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, storageError("checking user", err)
	}
	return n > 0, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	var handle, lastName sql.NullString
	var createdAt, updatedAt int64
	if err := row.Scan(&u.ID, &handle, &u.FirstName, &lastName, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.Handle = handle.String
	u.LastName = lastName.String
	u.CreatedAt = fromNanos(createdAt)
	u.UpdatedAt = fromNanos(updatedAt)
	return u, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
