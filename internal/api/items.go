package api

import (
	"net/http"

	"github.com/erazemk/custody/internal/ledger"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Ledger *ledger.Service
}

type createItemRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Ledger.CreateItem(r.Context(), GetClaims(r.Context()).UserID, req.Name)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Owned handles GET /api/items/owned.
func (h *ItemsHandler) Owned(w http.ResponseWriter, r *http.Request) {
	items, err := h.Ledger.OwnedItems(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(items))
}

// Created handles GET /api/items/created.
func (h *ItemsHandler) Created(w http.ResponseWriter, r *http.Request) {
	items, err := h.Ledger.CreatedItems(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(items))
}

// Get handles GET /api/items/{code}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Ledger.GetItem(r.Context(), r.PathValue("code"))
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// History handles GET /api/items/{code}/history.
func (h *ItemsHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.Ledger.History(r.Context(), r.PathValue("code"))
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(history))
}
