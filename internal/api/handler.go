package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"launder-manager-backend/internal/service"
	"launder-manager-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store          store.Store
	configurations *service.ConfigurationService
	notifications  *service.NotificationService
	webpush        *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, cfg *service.ConfigurationService, notif *service.NotificationService, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:          s,
		configurations: cfg,
		notifications:  notif,
		webpush:        webpushOptions,
	}
}
