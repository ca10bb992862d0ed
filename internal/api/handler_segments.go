package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"venue-occupancy-backend/internal/occupancy"
)

// segmentResponse is one contiguous run of days in the calendar grid.
type segmentResponse struct {
	ResourceID    int64  `json:"resourceId"`
	Kind          string `json:"kind"`
	ReservationID *int64 `json:"reservationId"`
	OverrideKind  string `json:"overrideKind,omitempty"`
	Start         string `json:"start"`
	End           string `json:"end"`
	IsFirstDay    bool   `json:"isFirstDay"`
	IsLastDay     bool   `json:"isLastDay"`
}

// GetResourceSegments handles the GET /api/resources/{resource_id}/segments
// request, returning the calendar segments for the window [from, to].
func (h *Handler) GetResourceSegments(c *gin.Context) {
	resourceID, err := strconv.ParseInt(c.Param("resource_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid resource ID"})
		return
	}

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date. Use YYYY-MM-DD."})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date. Use YYYY-MM-DD."})
		return
	}
	if to.Before(from) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "'to' must not precede 'from'"})
		return
	}

	resources, snap, err := h.store.LoadSnapshot(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load occupancy snapshot"})
		return
	}

	var resource *occupancy.Resource
	for i := range resources {
		if resources[i].ID == resourceID {
			resource = &resources[i]
			break
		}
	}
	if resource == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}

	segments := occupancy.BuildSegments(*resource, from, to, snap)
	response := make([]segmentResponse, 0, len(segments))
	for _, seg := range segments {
		response = append(response, segmentResponse{
			ResourceID:    seg.ResourceID,
			Kind:          string(seg.Kind),
			ReservationID: seg.ReservationID,
			OverrideKind:  string(seg.OverrideKind),
			Start:         seg.Start.Format("2006-01-02"),
			End:           seg.End.Format("2006-01-02"),
			IsFirstDay:    seg.IsFirstDay,
			IsLastDay:     seg.IsLastDay,
		})
	}

	c.JSON(http.StatusOK, response)
}
