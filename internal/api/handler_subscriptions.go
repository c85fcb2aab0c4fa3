package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"maintenance-records-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription registers the caller's browser for assignment pushes, replacing its keys if already known.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
		UserID:   currentUser(c),
	}
	if err := h.store.UpsertPushSubscription(c.Request.Context(), &subscription); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the caller's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	if err := h.store.DeleteUserPushSubscription(c.Request.Context(), currentUser(c), req.Endpoint); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type subscriptionResponse struct {
	Endpoint  string `json:"endpoint"`
	CreatedAt string `json:"created_at"`
}

// GetSubscriptions lists the caller's subscriptions. With ?endpoint= it reports whether that endpoint is registered.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	subs, err := h.store.ListPushSubscriptions(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if endpoint := c.Query("endpoint"); endpoint != "" {
		subscribed := false
		for _, s := range subs {
			if s.Endpoint == endpoint {
				subscribed = true
				break
			}
		}
		c.JSON(http.StatusOK, gin.H{"subscribed": subscribed})
		return
	}

	resp := make([]subscriptionResponse, len(subs))
	for i, s := range subs {
		resp[i] = subscriptionResponse{Endpoint: s.Endpoint, CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339)}
	}
	c.JSON(http.StatusOK, resp)
}

type vapidKeyResponse struct {
	PublicKey string `json:"public_key"`
}

// GetVAPIDPublicKey exposes the application server key browsers need to subscribe.
// Push is optional; without keys the endpoint reports the feature as unavailable.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if !h.pushEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are disabled"})
		return
	}
	c.JSON(http.StatusOK, vapidKeyResponse{PublicKey: h.webpush.VAPIDPublicKey})
}

func (h *Handler) pushEnabled() bool {
	return h.webpush != nil && h.webpush.VAPIDPublicKey != ""
}
