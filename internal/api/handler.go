package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"maintenance-records-backend/internal/maintenance"
	"maintenance-records-backend/internal/store"
)

// Options tunes request handling.
type Options struct {
	// UserHeader names the header carrying the authenticated caller id.
	UserHeader     string
	MaxUploadBytes int64
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc     *maintenance.Service
	store   store.Store
	webpush *webpush.Options
	opts    Options
}

// NewHandler creates a new API handler.
func NewHandler(svc *maintenance.Service, s store.Store, webpushOptions *webpush.Options, opts Options) *Handler {
	if opts.UserHeader == "" {
		opts.UserHeader = "X-User-ID"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	return &Handler{
		svc:     svc,
		store:   s,
		webpush: webpushOptions,
		opts:    opts,
	}
}
