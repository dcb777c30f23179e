package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/custody/internal/model"
)

// ProposeTransfer records a pending transfer of itemID from senderID to
// receiverID. The owner check and the insert run in one immediate transaction,
// so ownership cannot change in between.
func ProposeTransfer(ctx context.Context, db *sql.DB, itemID string, senderID, receiverID int64, at time.Time) (*model.Transfer, error) {
	if senderID == receiverID {
		return nil, model.ErrSelfTransfer
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("beginning transaction", err)
	}
	defer tx.Rollback()

	var ownerID int64
	err = tx.QueryRowContext(ctx, `SELECT owner_id FROM items WHERE id = ?`, itemID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %s: %w", itemID, model.ErrNotFound)
	}
	if err != nil {
		return nil, storageError("checking item owner", err)
	}

	ok, err := userExists(ctx, tx, receiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user %d: %w", receiverID, model.ErrNotFound)
	}

	if ownerID != senderID {
		return nil, model.ErrNotOwner
	}

	var pending int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transfers WHERE item_id = ? AND status = ?`,
		itemID, model.StatusPending,
	).Scan(&pending)
	if err != nil {
		return nil, storageError("checking pending transfers", err)
	}
	if pending > 0 {
		return nil, model.ErrTransferPending
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO transfers (item_id, sender_id, receiver_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		itemID, senderID, receiverID, model.StatusPending, toNanos(at),
	)
	if isUniqueViolation(err) {
		return nil, model.ErrTransferPending
	}
	if err != nil {
		return nil, storageError("recording transfer", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("committing transfer", err)
	}

	transferID, err := result.LastInsertId()
	if err != nil {
		return nil, storageError("getting transfer id", err)
	}
	return GetTransfer(ctx, db, transferID)
}

// ResolveTransfer applies the receiver's decision to a pending transfer. A
// missing transfer, a transfer that is no longer pending, or a receiver that
// does not match all fail with model.ErrAlreadyResolved. On acceptance the
// status and the item's owner are written in the same transaction, after
// checking that the sender still owns the item.
func ResolveTransfer(ctx context.Context, db *sql.DB, transferID, receiverID int64, decision model.Decision, at time.Time) (*model.Transfer, error) {
	status, err := decision.Status()
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("beginning transaction", err)
	}
	defer tx.Rollback()

	var itemID string
	var senderID, currentReceiver int64
	var current model.TransferStatus
	err = tx.QueryRowContext(ctx,
		`SELECT item_id, sender_id, receiver_id, status FROM transfers WHERE id = ?`, transferID,
	).Scan(&itemID, &senderID, &currentReceiver, &current)
	if err == sql.ErrNoRows {
		return nil, model.ErrAlreadyResolved
	}
	if err != nil {
		return nil, storageError("getting transfer", err)
	}
	if current != model.StatusPending || currentReceiver != receiverID {
		return nil, model.ErrAlreadyResolved
	}

	if status == model.StatusAccepted {
		var ownerID int64
		err = tx.QueryRowContext(ctx, `SELECT owner_id FROM items WHERE id = ?`, itemID).Scan(&ownerID)
		if err != nil {
			return nil, storageError("checking item owner", err)
		}
		if ownerID != senderID {
			return nil, model.ErrOwnershipChanged
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE transfers SET status = ?, resolved_at = ?
		 WHERE id = ? AND receiver_id = ? AND status = ?`,
		status, toNanos(at), transferID, receiverID, model.StatusPending,
	)
	if err != nil {
		return nil, storageError("updating transfer status", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, storageError("updating transfer status", err)
	} else if n != 1 {
		return nil, model.ErrAlreadyResolved
	}

	if status == model.StatusAccepted {
		result, err := tx.ExecContext(ctx,
			`UPDATE items SET owner_id = ? WHERE id = ? AND owner_id = ?`,
			receiverID, itemID, senderID,
		)
		if err != nil {
			return nil, storageError("updating item owner", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return nil, storageError("updating item owner", err)
		} else if n != 1 {
			return nil, model.ErrOwnershipChanged
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("committing resolution", err)
	}

	return GetTransfer(ctx, db, transferID)
}

// GetTransfer returns a transfer by ID, or nil if there is none.
func GetTransfer(ctx context.Context, db *sql.DB, id int64) (*model.Transfer, error) {
	rows, err := db.QueryContext(ctx, transferSelect+` WHERE t.id = ?`, id)
	if err != nil {
		return nil, storageError("getting transfer", err)
	}
	defer rows.Close()

	transfers, err := scanTransfers(rows)
	if err != nil {
		return nil, err
	}
	if len(transfers) == 0 {
		return nil, nil
	}
	return &transfers[0], nil
}

// transferSelect selects transfers joined with item name and both handles.
const transferSelect = `
	SELECT t.id, t.item_id, t.sender_id, t.receiver_id, t.status, t.created_at, t.resolved_at,
	       i.name, s.handle, r.handle
	FROM transfers t
	JOIN items i ON i.id = t.item_id
	JOIN users s ON s.id = t.sender_id
	JOIN users r ON r.id = t.receiver_id`

func scanTransfers(rows *sql.Rows) ([]model.Transfer, error) {
	var transfers []model.Transfer
	for rows.Next() {
		var t model.Transfer
		var createdAt int64
		var resolvedAt sql.NullInt64
		var senderHandle, receiverHandle sql.NullString
		if err := rows.Scan(&t.ID, &t.ItemID, &t.SenderID, &t.ReceiverID, &t.Status, &createdAt, &resolvedAt,
			&t.ItemName, &senderHandle, &receiverHandle); err != nil {
			return nil, storageError("scanning transfer", err)
		}
		t.CreatedAt = fromNanos(createdAt)
		if resolvedAt.Valid {
			rt := fromNanos(resolvedAt.Int64)
			t.ResolvedAt = &rt
		}
		t.SenderHandle = senderHandle.String
		t.ReceiverHandle = receiverHandle.String
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("reading transfers", err)
	}
	return transfers, nil
}
