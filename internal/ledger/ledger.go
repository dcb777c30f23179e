// Package ledger is the entry point the front end talks to. It wraps the
// store operations with a clock, logging, metrics and notifications sent
// after each transfer commits.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/custody/internal/metrics"
	"github.com/erazemk/custody/internal/model"
	"github.com/erazemk/custody/internal/notify"
	"github.com/erazemk/custody/internal/store"
)

// Service runs ledger operations against one database.
type Service struct {
	db       *sql.DB
	now      func() time.Time
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	contacts int
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source used for every recorded timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifier sets where transfer events are delivered.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithContactsLimit sets how many contacts RecentContacts returns when the
// caller passes no limit.
func WithContactsLimit(n int) Option {
	return func(s *Service) { s.contacts = n }
}

// New returns a Service. Without options it uses time.Now, logs
// notifications instead of delivering them and records no metrics.
func New(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:       db,
		now:      time.Now,
		logger:   slog.Default(),
		contacts: store.DefaultContactsLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.Log{Logger: s.logger}
	}
	return s
}

// DB returns the underlying pool.
func (s *Service) DB() *sql.DB {
	return s.db
}

// RegisterUser creates u or refreshes its handle and names. It is called
// on every interaction so the stored profile tracks the chat platform.
func (s *Service) RegisterUser(ctx context.Context, u model.User) (*model.User, error) {
	u.Handle = model.NormalizeHandle(u.Handle)
	user, err := store.UpsertUser(ctx, s.db, u, s.now())
	if err != nil {
		return nil, s.fail("register_user", err)
	}
	return user, nil
}

// GetUser returns the user with id, or ErrNotFound.
func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := store.GetUser(ctx, s.db, id)
	if err != nil {
		return nil, s.fail("get_user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, model.ErrNotFound)
	}
	return user, nil
}

// FindUser looks a user up by handle. A leading "@" is ignored; the match
// is case-sensitive.
func (s *Service) FindUser(ctx context.Context, handle string) (*model.User, error) {
	handle = model.NormalizeHandle(handle)
	user, err := store.GetUserByHandle(ctx, s.db, handle)
	if err != nil {
		return nil, s.fail("find_user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user @%s: %w", handle, model.ErrNotFound)
	}
	return user, nil
}

// CreateItem registers a new item created and owned by userID.
func (s *Service) CreateItem(ctx context.Context, userID int64, name string) (*model.Item, error) {
	item, err := store.CreateItem(ctx, s.db, name, userID, userID, s.now())
	if err != nil {
		return nil, s.fail("create_item", err)
	}
	s.metrics.ItemCreated()
	s.logger.InfoContext(ctx, "item created", "item", item.ID, "owner", userID)
	return item, nil
}

// GetItem returns the item with code, or ErrNotFound.
func (s *Service) GetItem(ctx context.Context, code string) (*model.Item, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	item, err := store.GetItem(ctx, s.db, code)
	if err != nil {
		return nil, s.fail("get_item", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", code, model.ErrNotFound)
	}
	return item, nil
}

// OwnedItems lists the items userID currently holds.
func (s *Service) OwnedItems(ctx context.Context, userID int64) ([]model.Item, error) {
	items, err := store.ListOwnedItems(ctx, s.db, userID)
	if err != nil {
		return nil, s.fail("owned_items", err)
	}
	return items, nil
}

// CreatedItems lists the items userID registered, wherever they are now.
func (s *Service) CreatedItems(ctx context.Context, userID int64) ([]model.Item, error) {
	items, err := store.ListCreatedItems(ctx, s.db, userID)
	if err != nil {
		return nil, s.fail("created_items", err)
	}
	return items, nil
}

// ProposeTransfer offers the item with code to receiverID. The receiver is
// notified once the proposal is recorded.
func (s *Service) ProposeTransfer(ctx context.Context, senderID int64, code string, receiverID int64) (*model.Transfer, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}

	at := s.now()
	t, err := store.ProposeTransfer(ctx, s.db, code, senderID, receiverID, at)
	if err != nil {
		return nil, s.fail("propose_transfer", err)
	}

	s.metrics.TransferProposed()
	s.logger.InfoContext(ctx, "transfer proposed",
		"transfer", t.ID, "item", t.ItemID, "sender", senderID, "receiver", receiverID)
	s.notify(ctx, notify.NewEvent(notify.KindProposed, t.ReceiverID, *t, at))
	return t, nil
}

// ProposeTransferToHandle is ProposeTransfer with the receiver given by
// handle.
func (s *Service) ProposeTransferToHandle(ctx context.Context, senderID int64, code, handle string) (*model.Transfer, error) {
	receiver, err := s.FindUser(ctx, handle)
	if err != nil {
		return nil, err
	}
	return s.ProposeTransfer(ctx, senderID, code, receiver.ID)
}

// Accept moves the item to receiverID and closes the transfer.
func (s *Service) Accept(ctx context.Context, transferID, receiverID int64) (*model.Transfer, error) {
	return s.resolve(ctx, transferID, receiverID, model.Accept)
}

// Reject closes the transfer and leaves the item with its owner.
func (s *Service) Reject(ctx context.Context, transferID, receiverID int64) (*model.Transfer, error) {
	return s.resolve(ctx, transferID, receiverID, model.Reject)
}

func (s *Service) resolve(ctx context.Context, transferID, receiverID int64, d model.Decision) (*model.Transfer, error) {
	at := s.now()
	t, err := store.ResolveTransfer(ctx, s.db, transferID, receiverID, d, at)
	if err != nil {
		return nil, s.fail(string(d), err)
	}

	s.metrics.TransferResolved(string(t.Status))
	s.logger.InfoContext(ctx, "transfer "+string(t.Status),
		"transfer", t.ID, "item", t.ItemID, "sender", t.SenderID, "receiver", t.ReceiverID)
	s.notify(ctx, notify.NewEvent(notify.ResolutionKind(t.Status), t.SenderID, *t, at))
	return t, nil
}

// GetTransfer returns a transfer visible to userID, who must be its sender
// or receiver. Anything else is ErrNotFound.
func (s *Service) GetTransfer(ctx context.Context, transferID, userID int64) (*model.Transfer, error) {
	t, err := store.GetTransfer(ctx, s.db, transferID)
	if err != nil {
		return nil, s.fail("get_transfer", err)
	}
	if t == nil || (t.SenderID != userID && t.ReceiverID != userID) {
		return nil, fmt.Errorf("transfer %d: %w", transferID, model.ErrNotFound)
	}
	return t, nil
}

// Pending lists transfers waiting for userID's decision, oldest first.
func (s *Service) Pending(ctx context.Context, userID int64) ([]model.Transfer, error) {
	ts, err := store.ListPendingTransfers(ctx, s.db, userID)
	if err != nil {
		return nil, s.fail("pending", err)
	}
	return ts, nil
}

// Sent lists transfers userID proposed, newest first.
func (s *Service) Sent(ctx context.Context, userID int64) ([]model.Transfer, error) {
	ts, err := store.ListSentTransfers(ctx, s.db, userID)
	if err != nil {
		return nil, s.fail("sent", err)
	}
	return ts, nil
}

// Received lists transfers addressed to userID, newest first.
func (s *Service) Received(ctx context.Context, userID int64) ([]model.Transfer, error) {
	ts, err := store.ListReceivedTransfers(ctx, s.db, userID)
	if err != nil {
		return nil, s.fail("received", err)
	}
	return ts, nil
}

// History returns every transfer of the item with code in chronological
// order. An unknown item is ErrNotFound.
func (s *Service) History(ctx context.Context, code string) ([]model.Transfer, error) {
	item, err := s.GetItem(ctx, code)
	if err != nil {
		return nil, err
	}
	ts, err := store.GetItemHistory(ctx, s.db, item.ID)
	if err != nil {
		return nil, s.fail("history", err)
	}
	return ts, nil
}

// RecentContacts returns the users userID most recently dealt with. A
// non-positive limit uses the configured default.
func (s *Service) RecentContacts(ctx context.Context, userID int64, limit int) ([]model.Contact, error) {
	if limit <= 0 {
		limit = s.contacts
	}
	cs, err := store.ListRecentContacts(ctx, s.db, userID, limit)
	if err != nil {
		return nil, s.fail("recent_contacts", err)
	}
	return cs, nil
}

// notify delivers e. The operation that produced it is already committed,
// so failures are only logged and counted.
func (s *Service) notify(ctx context.Context, e notify.Event) {
	if err := s.notifier.Notify(ctx, e); err != nil {
		s.metrics.NotificationFailed()
		s.logger.WarnContext(ctx, "notification failed",
			"event", e.ID, "kind", e.Kind, "recipient", e.RecipientID, "error", err)
	}
}

// fail records a failed operation. Storage failures are logged; domain
// errors are the caller's to report.
func (s *Service) fail(op string, err error) error {
	s.metrics.OperationFailed(op)
	if errors.Is(err, model.ErrStorage) || errors.Is(err, model.ErrCodeSpaceExhausted) {
		s.logger.Error("ledger operation failed", "op", op, "error", err)
	}
	return err
}

// normalizeCode trims and upper-cases an item code typed by a user, then
// checks its format.
func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !model.ValidItemCode(code) {
		return "", fmt.Errorf("%q: %w", code, model.ErrInvalidItemCode)
	}
	return code, nil
}
