package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"venue-occupancy-backend/internal/occupancy"
)

// summaryResponse carries fleet totals plus the per-zone breakdown the
// dashboard renders side by side.
type summaryResponse struct {
	At     time.Time                    `json:"at"`
	Fleet  occupancy.Summary            `json:"fleet"`
	ByZone map[string]occupancy.Summary `json:"byZone"`
}

// GetSummary handles the GET /api/summary request.
func (h *Handler) GetSummary(c *gin.Context) {
	at := time.Now().UTC()
	if atParam := c.Query("at"); atParam != "" {
		parsed, err := time.Parse(time.RFC3339, atParam)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'at' timestamp format. Use RFC3339."})
			return
		}
		at = parsed
	}

	resources, snap, err := h.store.LoadSnapshot(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load occupancy snapshot"})
		return
	}

	c.JSON(http.StatusOK, summaryResponse{
		At:     at,
		Fleet:  occupancy.Summarize(resources, at, snap, h.resolver),
		ByZone: occupancy.SummarizeByZone(resources, at, snap, h.resolver),
	})
}
