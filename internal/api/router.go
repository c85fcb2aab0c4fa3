package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"maintenance-records-backend/internal/mw"
)

// RouterConfig holds the middleware settings of the router.
type RouterConfig struct {
	RateLimit rate.Limit
	Burst     int
	Limiter   *mw.IPRateLimiter
	Cache     *mw.ResponseCache
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger())

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = mw.NewIPRateLimiter(cfg.RateLimit, cfg.Burst)
	}

	// API group
	api := r.Group("/api")
	api.Use(mw.RateLimit(limiter))
	{
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		authed := api.Group("", h.requireUser)
		if cfg.Cache != nil {
			authed.Use(cfg.Cache.Middleware())
		}

		records := authed.Group("/machines/:machineId/maintenance-records")
		records.POST("", h.CreateRecord)
		records.GET("", h.ListRecords)
		records.GET("/:recordId", h.GetRecord)
		records.PATCH("/:recordId", h.UpdateRecord)
		records.PATCH("/:recordId/finish", h.FinishRecord)
		records.POST("/:recordId/events", h.CreateEvent)
		records.GET("/:recordId/events", h.ListEvents)
		records.POST("/:recordId/photos", h.UploadPhoto)
		records.GET("/:recordId/photos", h.ListPhotos)
		records.DELETE("/:recordId/photos/:photoId", h.DeletePhoto)

		authed.GET("/maintenance-records", h.ListAllRecords)

		authed.GET("/push-subscriptions", h.GetSubscriptions)
		authed.PUT("/push-subscriptions", h.PutSubscription)
		authed.DELETE("/push-subscriptions", h.DeleteSubscription)
	}

	return r
}
