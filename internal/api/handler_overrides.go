package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"venue-occupancy-backend/internal/model"
	"venue-occupancy-backend/internal/occupancy"
)

type putOverrideRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
	Kind string `json:"kind" binding:"required"`
	Note string `json:"note"`
}

// PutOverride handles the creation or replacement of a manual status
// override for one resource and day.
func (h *Handler) PutOverride(c *gin.Context) {
	resourceID, err := strconv.ParseInt(c.Param("resource_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource ID"})
		return
	}

	var req putOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'date'. Use YYYY-MM-DD."})
		return
	}

	if err := occupancy.CheckOverride(occupancy.Override{
		ResourceID: resourceID,
		Day:        date,
		Kind:       occupancy.OverrideKind(req.Kind),
	}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Unlike feed-supplied data, a staff edit against a missing resource is
	// a hard error, not a drop-with-warning.
	var resource model.Resource
	if err := h.store.DB().First(&resource, resourceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	override := model.OverrideEvent{
		ResourceID: resourceID,
		Date:       occupancy.Day(date),
		Kind:       req.Kind,
		Note:       req.Note,
	}
	if err := h.store.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "note"}),
	}).Create(&override).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

// DeleteOverride removes the override for a resource on a day, if any.
func (h *Handler) DeleteOverride(c *gin.Context) {
	resourceID, err := strconv.ParseInt(c.Param("resource_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource ID"})
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing 'date'. Use YYYY-MM-DD."})
		return
	}

	if err := h.store.DB().
		Where("resource_id = ? AND date = ?", resourceID, occupancy.Day(date)).
		Delete(&model.OverrideEvent{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
