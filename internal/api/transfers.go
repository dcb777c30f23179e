package api

import (
	"context"
	"net/http"

	"github.com/erazemk/custody/internal/ledger"
	"github.com/erazemk/custody/internal/model"
)

// TransfersHandler handles transfer endpoints. The acting user always comes
// from the token.
type TransfersHandler struct {
	Ledger *ledger.Service
}

type createTransferRequest struct {
	ItemID         string `json:"item_id"`
	ReceiverID     int64  `json:"receiver_id"`
	ReceiverHandle string `json:"receiver_handle"`
}

// Create handles POST /api/transfers.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	senderID := GetClaims(r.Context()).UserID

	var (
		t   *model.Transfer
		err error
	)
	switch {
	case req.ReceiverID != 0:
		t, err = h.Ledger.ProposeTransfer(r.Context(), senderID, req.ItemID, req.ReceiverID)
	case req.ReceiverHandle != "":
		t, err = h.Ledger.ProposeTransferToHandle(r.Context(), senderID, req.ItemID, req.ReceiverHandle)
	default:
		jsonError(w, http.StatusBadRequest, "receiver_id or receiver_handle required")
		return
	}
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, t)
}

// Accept handles POST /api/transfers/{id}/accept.
func (h *TransfersHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Ledger.Accept)
}

// Reject handles POST /api/transfers/{id}/reject.
func (h *TransfersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Ledger.Reject)
}

type resolveFunc func(ctx context.Context, transferID, receiverID int64) (*model.Transfer, error)

func (h *TransfersHandler) resolve(w http.ResponseWriter, r *http.Request, fn resolveFunc) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	t, err := fn(r.Context(), id, GetClaims(r.Context()).UserID)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, t)
}

// Get handles GET /api/transfers/{id}. Only the two parties can see it.
func (h *TransfersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	t, err := h.Ledger.GetTransfer(r.Context(), id, GetClaims(r.Context()).UserID)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, t)
}

// Pending handles GET /api/transfers/pending.
func (h *TransfersHandler) Pending(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Ledger.Pending(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(ts))
}

// Sent handles GET /api/transfers/sent.
func (h *TransfersHandler) Sent(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Ledger.Sent(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(ts))
}

// Received handles GET /api/transfers/received.
func (h *TransfersHandler) Received(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Ledger.Received(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(ts))
}
