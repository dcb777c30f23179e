package model

import "errors"

// Ledger errors. Callers match them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrNotOwner           = errors.New("not the current owner of the item")
	ErrAlreadyResolved    = errors.New("transfer not found or already resolved")
	ErrDuplicateHandle    = errors.New("handle already taken")
	ErrOwnershipChanged   = errors.New("item changed owner since the transfer was proposed")
	ErrTransferPending    = errors.New("item already has a pending transfer")
	ErrSelfTransfer       = errors.New("cannot transfer to self")
	ErrInvalidItemCode    = errors.New("invalid item code")
	ErrInvalidName        = errors.New("name required")
	ErrCodeSpaceExhausted = errors.New("could not allocate a free item code")
	ErrStorage            = errors.New("storage failure")
)
