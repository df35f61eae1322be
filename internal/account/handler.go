package account

import (
	"go.uber.org/zap"
)

// Handler owns the account routes. Collaborators are injected; there is no
// package-level state.
type Handler struct {
	store    Store
	sessions SessionAuthority
	mailer   Mailer
	log      *zap.Logger
}

func NewHandler(store Store, sessions SessionAuthority, mailer Mailer, log *zap.Logger) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		mailer:   mailer,
		log:      log,
	}
}
