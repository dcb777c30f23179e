package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/custody/internal/ledger"
	"github.com/erazemk/custody/internal/model"
)

// UsersHandler handles profile, lookup and contact endpoints.
type UsersHandler struct {
	Ledger *ledger.Service
}

type updateMeRequest struct {
	Handle    string `json:"handle"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Me handles GET /api/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Ledger.GetUser(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// UpdateMe handles PUT /api/me.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Ledger.RegisterUser(r.Context(), model.User{
		ID:        GetClaims(r.Context()).UserID,
		Handle:    req.Handle,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.Ledger.GetUser(r.Context(), id)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Lookup handles GET /api/users?handle=.
func (h *UsersHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	handle := r.URL.Query().Get("handle")
	if handle == "" {
		jsonError(w, http.StatusBadRequest, "handle required")
		return
	}

	user, err := h.Ledger.FindUser(r.Context(), handle)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Contacts handles GET /api/contacts?limit=.
func (h *UsersHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	contacts, err := h.Ledger.RecentContacts(r.Context(), GetClaims(r.Context()).UserID, limit)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(contacts))
}
