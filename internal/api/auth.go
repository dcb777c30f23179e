package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/custody/internal/auth"
	"github.com/erazemk/custody/internal/ledger"
	"github.com/erazemk/custody/internal/model"
	"github.com/erazemk/custody/internal/store"
)

// AuthHandler issues and revokes tokens for the users the front end acts
// on behalf of.
type AuthHandler struct {
	Ledger    *ledger.Service
	JWTSecret string
	TokenTTL  time.Duration
}

type tokenRequest struct {
	ClientSecret string      `json:"client_secret"`
	User         userPayload `json:"user"`
}

type userPayload struct {
	ID        int64  `json:"id"`
	Handle    string `json:"handle"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Token handles POST /api/auth/token. The caller proves it is the front end
// with the client secret; the user in the body is registered or refreshed
// and gets a token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ClientSecret == "" || req.User.ID == 0 {
		jsonError(w, http.StatusBadRequest, "client_secret and user.id required")
		return
	}

	hash, err := store.GetSetting(r.Context(), h.Ledger.DB(), store.SettingClientSecretHash)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !auth.CheckSecret(hash, req.ClientSecret) {
		slog.Warn("token request with bad client secret", "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid client secret")
		return
	}

	user, err := h.Ledger.RegisterUser(r.Context(), model.User{
		ID:        req.User.ID,
		Handle:    req.User.Handle,
		FirstName: req.User.FirstName,
		LastName:  req.User.LastName,
	})
	if err != nil {
		ledgerError(w, err)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Handle, h.TokenTTL)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("token issued", "user", user.ID, "handle", user.Handle)
	jsonResponse(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	expiresAt := time.Now().Add(h.TokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := store.RevokeToken(r.Context(), h.Ledger.DB(), claims.ID, expiresAt, time.Now()); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to revoke token")
		return
	}

	slog.Info("token revoked", "user", claims.UserID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
