package handlers

import (
	"net/http"

	"github.com/arnavshah/roster-compliance-go/pkg/scheduler"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
	"github.com/gin-gonic/gin"
)

// ValidateInput checks a snapshot without analysing it
func (h *Handler) ValidateInput(c *gin.Context) {
	var snap scheduling.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if !keyInfo(c).Allows(snap.RestaurantID) {
		c.JSON(http.StatusForbidden, gin.H{"valid": false, "error": "API key is not valid for restaurant " + snap.RestaurantID})
		return
	}

	if len(snap.StaffProfiles) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one staff profile is required",
		})
		return
	}

	// Check for duplicate IDs
	staffIDs := make(map[string]bool)
	for _, p := range snap.StaffProfiles {
		if staffIDs[p.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate staff ID: " + p.ID})
			return
		}
		staffIDs[p.ID] = true
	}

	shiftIDs := make(map[string]bool)
	for _, s := range snap.ShiftRecords {
		if shiftIDs[s.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate shift ID: " + s.ID})
			return
		}
		shiftIDs[s.ID] = true
	}

	if err := scheduler.ValidateScope(&snap.Scope); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	for _, r := range snap.Reliability {
		if r < 0 || r > 1 {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "reliability ratios must be within [0,1]"})
			return
		}
	}

	h.RecordUsage(c, len(snap.ShiftRecords), len(snap.StaffProfiles))
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"staff_count":        len(snap.StaffProfiles),
			"shift_count":        len(snap.ShiftRecords),
			"skill_count":        len(snap.SkillAssignments),
			"availability_count": len(snap.AvailabilityWindows),
			"time_off_count":     len(snap.TimeOffRequests),
		},
	})
}
