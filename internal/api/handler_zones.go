package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"venue-occupancy-backend/internal/model"
)

// ZoneResponse represents the API response for a single zone.
type ZoneResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	TotalResources int64  `json:"totalResources"`
	TotalCapacity  int64  `json:"totalCapacity"`
}

// GetZones handles the GET /api/zones request.
func GetZones(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var zones []model.Zone
		if err := db.Find(&zones).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve zones"})
			return
		}

		// One aggregate pass over resources instead of a query per zone.
		type AggRow struct {
			ZoneID         int64
			TotalResources int64
			TotalCapacity  int64
		}
		var aggs []AggRow
		if err := db.
			Model(&model.Resource{}).
			Select("zone_id as zone_id, COUNT(*) as total_resources, COALESCE(SUM(capacity), 0) as total_capacity").
			Group("zone_id").
			Scan(&aggs).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate resources"})
			return
		}

		aggMap := make(map[int64]AggRow, len(aggs))
		for _, a := range aggs {
			aggMap[a.ZoneID] = a
		}

		responses := make([]ZoneResponse, 0, len(zones))
		for _, z := range zones {
			a := aggMap[z.ID] // zero value when the zone is empty
			responses = append(responses, ZoneResponse{
				ID: z.ID, Name: z.Name,
				TotalResources: a.TotalResources, TotalCapacity: a.TotalCapacity,
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}
