package handlers

import (
	"net/http"
	"strconv"

	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
	"github.com/gin-gonic/gin"
)

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// GenerateKey mints an HMAC key bound to one restaurant ("*" for all)
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		RestaurantID string `json:"restaurant_id" binding:"required"`
		RateLimit    int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := h.Auth.GenerateKey(req.Name, req.RestaurantID)
	apiKey, err := h.Store.CreateKey(c.Request.Context(), key, req.Name, req.RestaurantID, req.RateLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            apiKey.ID,
		"name":          apiKey.Name,
		"restaurant_id": apiKey.RestaurantID,
		"rate_limit":    apiKey.RateLimit,
		"key":           key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	keys, err := h.Store.ListKeys(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Store.RevokeKey(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	if err := h.Store.UpdateKeyLimit(c.Request.Context(), id, req.RateLimit); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	usage, err := h.Store.Usage(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

// ImportSnapshot loads a roster snapshot into the store in one transaction.
// Reliability overrides in the body are ignored; the store derives them.
func (h *Handler) ImportSnapshot(c *gin.Context) {
	var snap scheduling.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.SaveScope(c.Request.Context(), &snap.Scope); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"restaurant_id": snap.RestaurantID,
		"staff":         len(snap.StaffProfiles),
		"skills":        len(snap.SkillAssignments),
		"availability":  len(snap.AvailabilityWindows),
		"time_off":      len(snap.TimeOffRequests),
		"shifts":        len(snap.ShiftRecords),
	})
}
