package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/custody/internal/ledger"
	"github.com/erazemk/custody/internal/metrics"
)

// Config holds what the router needs.
type Config struct {
	Ledger    *ledger.Service
	JWTSecret string
	TokenTTL  time.Duration
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Ledger: cfg.Ledger, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}
	usersHandler := &UsersHandler{Ledger: cfg.Ledger}
	itemsHandler := &ItemsHandler{Ledger: cfg.Ledger}
	transfersHandler := &TransfersHandler{Ledger: cfg.Ledger}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.Ledger.DB())
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public.
	mux.HandleFunc("POST /api/auth/token", authHandler.Token)
	mux.HandleFunc("GET /healthz", healthz(cfg.Ledger))
	mux.Handle("GET /metrics", cfg.Metrics.Handler())

	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Users.
	mux.Handle("GET /api/me", authed(usersHandler.Me))
	mux.Handle("PUT /api/me", authed(usersHandler.UpdateMe))
	mux.Handle("GET /api/users", authed(usersHandler.Lookup))
	mux.Handle("GET /api/users/{id}", authed(usersHandler.Get))
	mux.Handle("GET /api/contacts", authed(usersHandler.Contacts))

	// Items.
	mux.Handle("POST /api/items", authed(itemsHandler.Create))
	mux.Handle("GET /api/items/owned", authed(itemsHandler.Owned))
	mux.Handle("GET /api/items/created", authed(itemsHandler.Created))
	mux.Handle("GET /api/items/{code}", authed(itemsHandler.Get))
	mux.Handle("GET /api/items/{code}/history", authed(itemsHandler.History))

	// Transfers.
	mux.Handle("POST /api/transfers", authed(transfersHandler.Create))
	mux.Handle("GET /api/transfers/pending", authed(transfersHandler.Pending))
	mux.Handle("GET /api/transfers/sent", authed(transfersHandler.Sent))
	mux.Handle("GET /api/transfers/received", authed(transfersHandler.Received))
	mux.Handle("GET /api/transfers/{id}", authed(transfersHandler.Get))
	mux.Handle("POST /api/transfers/{id}/accept", authed(transfersHandler.Accept))
	mux.Handle("POST /api/transfers/{id}/reject", authed(transfersHandler.Reject))

	return LoggingMiddleware(cfg.Logger, cfg.Metrics)(mux)
}

func healthz(l *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := l.DB().PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
