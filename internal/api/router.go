package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"venue-occupancy-backend/internal/mw"
	"venue-occupancy-backend/internal/occupancy"
	"venue-occupancy-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, resolver *occupancy.Resolver, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s, resolver, webpushOptions)

	// Initialize middleware
	// Rate limit: 10 requests per second with a burst of 5
	rateLimiter := mw.RateLimiter(rate.Limit(10), 5)

	// Cache: occupancy is recomputed on every poll anyway, so a short TTL
	// keeps the floor plan snappy without staleness anyone would notice.
	cacheStore := cache.New(30*time.Second, 5*time.Minute)
	caching := mw.Cache(cacheStore, 30*time.Second)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// GET /api/zones
		api.GET("/zones", caching, GetZones(db))

		// GET /api/zones/{zone_id}/resources
		api.GET("/zones/:zone_id/resources", caching, handler.GetZoneStatus)

		// GET /api/resources/{resource_id}/segments
		api.GET("/resources/:resource_id/segments", caching, handler.GetResourceSegments)

		// GET /api/summary
		api.GET("/summary", caching, handler.GetSummary)

		// Staff overrides
		api.PUT("/resources/:resource_id/overrides", handler.PutOverride)
		api.DELETE("/resources/:resource_id/overrides", handler.DeleteOverride)

		// Conflict-alert subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
