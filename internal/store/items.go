package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/erazemk/custody/internal/model"
)

// MaxCodeAttempts bounds how many item codes CreateItem draws before giving up.
// With ~3.7e17 possible codes, running out means the generator is broken.
const MaxCodeAttempts = 16

// newItemCode draws a candidate item code. Replaced in tests.
var newItemCode = generateItemCode

// CreateItem creates an item owned by ownerID and returns it. The code is drawn
// at random and uniqueness is left to the primary key: a conflicting insert
// draws again, up to MaxCodeAttempts times.
func CreateItem(ctx context.Context, db *sql.DB, name string, creatorID, ownerID int64, at time.Time) (*model.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrInvalidName
	}

	for _, id := range []int64{creatorID, ownerID} {
		ok, err := userExists(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("user %d: %w", id, model.ErrNotFound)
		}
	}

	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		code, err := newItemCode()
		if err != nil {
			return nil, fmt.Errorf("generating item code: %w", err)
		}

		_, err = db.ExecContext(ctx,
			`INSERT INTO items (id, name, creator_id, owner_id, created_at) VALUES (?, ?, ?, ?, ?)`,
			code, name, creatorID, ownerID, toNanos(at),
		)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return nil, storageError("creating item", err)
		}

		return GetItem(ctx, db, code)
	}

	return nil, model.ErrCodeSpaceExhausted
}

// GetItem returns an item by code, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	item := &model.Item{}
	var ownerHandle sql.NullString
	var createdAt int64
	err := db.QueryRowContext(ctx,
		`SELECT i.id, i.name, i.creator_id, i.owner_id, i.created_at, u.handle
		 FROM items i
		 JOIN users u ON u.id = i.owner_id
		 WHERE i.id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.CreatorID, &item.OwnerID, &createdAt, &ownerHandle)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("getting item", err)
	}
	item.CreatedAt = fromNanos(createdAt)
	item.OwnerHandle = ownerHandle.String
	return item, nil
}

// ListOwnedItems returns the items currently owned by userID, in creation order.
func ListOwnedItems(ctx context.Context, db *sql.DB, userID int64) ([]model.Item, error) {
	return listItems(ctx, db, "listing owned items", `i.owner_id = ?`, userID)
}

// ListCreatedItems returns the items userID created, each with its current
// owner's handle.
func ListCreatedItems(ctx context.Context, db *sql.DB, userID int64) ([]model.Item, error) {
	return listItems(ctx, db, "listing created items", `i.creator_id = ?`, userID)
}

func listItems(ctx context.Context, db *sql.DB, op, where string, args ...any) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.name, i.creator_id, i.owner_id, i.created_at, u.handle
		 FROM items i
		 JOIN users u ON u.id = i.owner_id
		 WHERE `+where+`
		 ORDER BY i.created_at, i.rowid`, args...,
	)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var ownerHandle sql.NullString
		var createdAt int64
		if err := rows.Scan(&item.ID, &item.Name, &item.CreatorID, &item.OwnerID, &createdAt, &ownerHandle); err != nil {
			return nil, storageError("scanning item", err)
		}
		item.CreatedAt = fromNanos(createdAt)
		item.OwnerHandle = ownerHandle.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return items, nil
}

// generateItemCode draws five uppercase letters followed by five digits.
func generateItemCode() (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const digits = "0123456789"

	code := make([]byte, model.ItemCodeLength)
	for i := range code {
		charset := digits
		if i < model.ItemCodeLetters {
			charset = letters
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[n.Int64()]
	}
	return string(code), nil
}
