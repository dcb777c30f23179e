// Package notify delivers transfer events to the front end so it can tell
// the affected user that something happened.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/custody/internal/model"
)

// Kind names the event being delivered.
type Kind string

const (
	KindProposed Kind = "transfer.proposed"
	KindAccepted Kind = "transfer.accepted"
	KindRejected Kind = "transfer.rejected"
)

// Event tells RecipientID about a change to a transfer.
type Event struct {
	ID          string         `json:"id"`
	Kind        Kind           `json:"kind"`
	RecipientID int64          `json:"recipient_id"`
	Transfer    model.Transfer `json:"transfer"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// NewEvent builds an event with a fresh id.
func NewEvent(kind Kind, recipientID int64, t model.Transfer, at time.Time) Event {
	return Event{
		ID:          uuid.NewString(),
		Kind:        kind,
		RecipientID: recipientID,
		Transfer:    t,
		OccurredAt:  at,
	}
}

// ResolutionKind maps a terminal transfer status to its event kind.
func ResolutionKind(status model.TransferStatus) Kind {
	if status == model.StatusAccepted {
		return KindAccepted
	}
	return KindRejected
}

// Notifier delivers events.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Log is a Notifier that only writes events to a logger. It is used when no
// webhook is configured.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(ctx context.Context, e Event) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification",
		"id", e.ID,
		"kind", e.Kind,
		"recipient", e.RecipientID,
		"transfer", e.Transfer.ID,
		"item", e.Transfer.ItemID,
	)
	return nil
}
