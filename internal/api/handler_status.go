package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"venue-occupancy-backend/internal/model"
	"venue-occupancy-backend/internal/occupancy"
)

// resourceStatusResponse is the flattened structure for the API response.
type resourceStatusResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Zone          string    `json:"zone"`
	Capacity      int       `json:"capacity"`
	Window        string    `json:"window"`
	Status        string    `json:"status"`
	Conflict      bool      `json:"conflict"`
	Source        string    `json:"source"`
	ReservationID int64     `json:"reservationId,omitempty"`
	PartySize     int       `json:"partySize,omitempty"`
	ClientRef     string    `json:"clientRef,omitempty"`
	OverrideKind  string    `json:"overrideKind,omitempty"`
	OverrideNote  string    `json:"overrideNote,omitempty"`
	At            time.Time `json:"at"`
}

// GetZoneStatus handles the GET /api/zones/{zone_id}/resources request.
// The optional "at" query resolves the zone at a past or future instant;
// "service" filters resources by their availability window.
func (h *Handler) GetZoneStatus(c *gin.Context) {
	zoneID, err := strconv.ParseInt(c.Param("zone_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid zone ID"})
		return
	}

	at := time.Now().UTC()
	if atParam := c.Query("at"); atParam != "" {
		at, err = time.Parse(time.RFC3339, atParam)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'at' timestamp format. Use RFC3339."})
			return
		}
	}

	var zone model.Zone
	if err := h.store.DB().First(&zone, zoneID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Zone not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve zone"})
		}
		return
	}

	resources, snap, err := h.store.LoadSnapshot(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load occupancy snapshot"})
		return
	}

	service := c.Query("service")
	response := make([]resourceStatusResponse, 0)
	for _, res := range resources {
		if res.Zone != zone.Name {
			continue
		}
		if service != "" && !windowMatches(res.Window, service) {
			continue
		}

		result := h.resolver.Resolve(res, at, snap)
		row := resourceStatusResponse{
			ID:       res.ID,
			Name:     res.Name,
			Zone:     res.Zone,
			Capacity: res.Capacity,
			Window:   string(res.Window),
			Status:   string(result.Status),
			Conflict: result.Conflict,
			Source:   string(result.Source),
			At:       at,
		}
		if result.Source == occupancy.SourceReservation {
			row.ReservationID = result.IntervalID
			if iv, ok := findInterval(snap, res.ID, result.IntervalID); ok {
				row.PartySize = iv.PartySize
				row.ClientRef = iv.ClientRef
			}
		}
		if result.Override != nil {
			row.OverrideKind = string(result.Override.Kind)
			row.OverrideNote = result.Override.Note
		}
		response = append(response, row)
	}

	c.JSON(http.StatusOK, response)
}

func windowMatches(window occupancy.ServiceWindow, service string) bool {
	return window == occupancy.WindowBoth || string(window) == service
}

func findInterval(snap *occupancy.Snapshot, resourceID, intervalID int64) (occupancy.Interval, bool) {
	for _, iv := range snap.Intervals(resourceID) {
		if iv.ID == intervalID {
			return iv, true
		}
	}
	return occupancy.Interval{}, false
}
