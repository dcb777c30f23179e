package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/custody/internal/model"
)

// DefaultContactsLimit is how many recent contacts are returned when no
// positive limit is given.
const DefaultContactsLimit = 3

// ListPendingTransfers returns the pending transfers awaiting receiverID's
// decision, oldest first.
func ListPendingTransfers(ctx context.Context, db *sql.DB, receiverID int64) ([]model.Transfer, error) {
	return listTransfers(ctx, db, "listing pending transfers",
		` WHERE t.receiver_id = ? AND t.status = ? ORDER BY t.created_at, t.id`,
		receiverID, model.StatusPending)
}

// ListSentTransfers returns every transfer senderID proposed, newest first.
func ListSentTransfers(ctx context.Context, db *sql.DB, senderID int64) ([]model.Transfer, error) {
	return listTransfers(ctx, db, "listing sent transfers",
		` WHERE t.sender_id = ? ORDER BY t.created_at DESC, t.id DESC`, senderID)
}

// ListReceivedTransfers returns every transfer addressed to receiverID, newest first.
func ListReceivedTransfers(ctx context.Context, db *sql.DB, receiverID int64) ([]model.Transfer, error) {
	return listTransfers(ctx, db, "listing received transfers",
		` WHERE t.receiver_id = ? ORDER BY t.created_at DESC, t.id DESC`, receiverID)
}

// GetItemHistory returns every transfer ever proposed for itemID in
// chronological order.
func GetItemHistory(ctx context.Context, db *sql.DB, itemID string) ([]model.Transfer, error) {
	return listTransfers(ctx, db, "getting item history",
		` WHERE t.item_id = ? ORDER BY t.created_at, t.id`, itemID)
}

func listTransfers(ctx context.Context, db *sql.DB, op, tail string, args ...any) ([]model.Transfer, error) {
	rows, err := db.QueryContext(ctx, transferSelect+tail, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

// ListRecentContacts returns the distinct users userID most recently
// exchanged transfers with, in either direction. Each counterparty is ranked by
// its latest transfer. Users without a handle and userID itself are skipped.
func ListRecentContacts(ctx context.Context, db *sql.DB, userID int64, limit int) ([]model.Contact, error) {
	if limit <= 0 {
		limit = DefaultContactsLimit
	}

	rows, err := db.QueryContext(ctx,
		`SELECT u.id, u.handle, u.first_name, u.last_name, MAX(c.created_at) AS last_at
		 FROM (
		     SELECT receiver_id AS contact_id, created_at, id FROM transfers WHERE sender_id = ?
		     UNION ALL
		     SELECT sender_id AS contact_id, created_at, id FROM transfers WHERE receiver_id = ?
		 ) c
		 JOIN users u ON u.id = c.contact_id
		 WHERE u.handle IS NOT NULL AND u.id != ?
		 GROUP BY u.id
		 ORDER BY last_at DESC, MAX(c.id) DESC
		 LIMIT ?`,
		userID, userID, userID, limit,
	)
	if err != nil {
		return nil, storageError("listing recent contacts", err)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		var lastName sql.NullString
		var lastAt int64
		if err := rows.Scan(&c.UserID, &c.Handle, &c.FirstName, &lastName, &lastAt); err != nil {
			return nil, storageError("scanning contact", err)
		}
		c.LastName = lastName.String
		c.LastInteraction = fromNanos(lastAt)
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("listing recent contacts", err)
	}
	return contacts, nil
}
