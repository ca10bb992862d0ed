package api

import (
	"venue-occupancy-backend/internal/occupancy"
	"venue-occupancy-backend/internal/store"

	"github.com/SherClockHolmes/webpush-go"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	resolver *occupancy.Resolver
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, resolver *occupancy.Resolver, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		resolver: resolver,
		webpush:  webpushOptions,
	}
}
