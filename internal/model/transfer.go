package model

import (
	"fmt"
	"time"
)

// TransferStatus is the state of a transfer. Only StatusPending is non-terminal.
type TransferStatus string

// Transfer statuses.
const (
	StatusPending  TransferStatus = "pending"
	StatusAccepted TransferStatus = "accepted"
	StatusRejected TransferStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s TransferStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Decision is the receiver's answer to a pending transfer.
type Decision string

// Decisions.
const (
	Accept Decision = "accept"
	Reject Decision = "reject"
)

// Status returns the terminal status a decision leads to.
func (d Decision) Status() (TransferStatus, error) {
	switch d {
	case Accept:
		return StatusAccepted, nil
	case Reject:
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("unknown decision %q", string(d))
	}
}

// Transfer is a proposed change of an item's owner. Transfers are append-only:
// the status changes at most once, from pending to accepted or rejected.
type Transfer struct {
	ID         int64          `json:"id"`
	ItemID     string         `json:"item_id"`
	SenderID   int64          `json:"sender_id"`
	ReceiverID int64          `json:"receiver_id"`
	Status     TransferStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`

	// Joined fields (not always populated).
	ItemName       string `json:"item_name,omitempty"`
	SenderHandle   string `json:"sender_handle,omitempty"`
	ReceiverHandle string `json:"receiver_handle,omitempty"`
}

// Counterparty returns the ID and handle of the party other than userID.
func (t *Transfer) Counterparty(userID int64) (int64, string) {
	if t.SenderID == userID {
		return t.ReceiverID, t.ReceiverHandle
	}
	return t.SenderID, t.SenderHandle
}

// Contact is a recent counterparty of a user, ranked by LastInteraction.
type Contact struct {
	UserID          int64     `json:"user_id"`
	Handle          string    `json:"handle"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name,omitempty"`
	LastInteraction time.Time `json:"last_interaction"`
}
