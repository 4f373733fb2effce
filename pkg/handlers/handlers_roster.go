package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"github.com/arnavshah/roster-compliance-go/pkg/report"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduler"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// dateQuery reads ?date=YYYY-MM-DD, defaulting to today in UTC
func dateQuery(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return models.DateOnly(time.Now().UTC()), nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, &scheduler.ValidationError{Field: "date", Reason: err.Error()}
	}
	return d, nil
}

func (h *Handler) analyze(c *gin.Context) (*scheduling.Analysis, bool) {
	date, err := dateQuery(c)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	a, err := h.Facade.AnalyzeSchedule(c.Request.Context(), c.Param("restaurant"), date)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	h.RecordUsage(c, a.ShiftCount, a.StaffCount)
	return a, true
}

// Analysis returns conflicts, violations and balances for a restaurant and
// date. With ?persist=true the findings are appended to the audit tables.
func (h *Handler) Analysis(c *gin.Context) {
	a, ok := h.analyze(c)
	if !ok {
		return
	}

	if c.Query("persist") == "true" {
		ctx := c.Request.Context()
		date, _ := models.ParseDate(a.Date)
		now := time.Now()
		if _, err := h.Store.AppendConflicts(ctx, a.RestaurantID, date, now, a.Conflicts); err != nil {
			h.fail(c, err)
			return
		}
		if _, err := h.Store.AppendViolations(ctx, now, a.Violations); err != nil {
			h.fail(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, a)
}

// AnalysisXLSX returns the same analysis as a workbook
func (h *Handler) AnalysisXLSX(c *gin.Context) {
	a, ok := h.analyze(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteAnalysis(&buf, a); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="analysis-`+a.RestaurantID+`-`+a.Date+`.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Suggestions ranks candidates for the open shifts of a restaurant on a date
func (h *Handler) Suggestions(c *gin.Context) {
	date, err := dateQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	set, err := h.Facade.SuggestOpenAssignments(c.Request.Context(), c.Param("restaurant"), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.RecordUsage(c, set.ShiftCount, set.StaffCount)
	c.JSON(http.StatusOK, set)
}

// ListViolations returns persisted violations, newest first
func (h *Handler) ListViolations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	rows, err := h.Store.ListViolations(c.Request.Context(), c.Param("restaurant"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"violations": rows})
}

// ImportShiftsCSV upserts shifts from an uploaded shifts_file
func (h *Handler) ImportShiftsCSV(c *gin.Context) {
	shiftsFile, _ := c.FormFile("shifts_file")
	if shiftsFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shifts_file is required"})
		return
	}

	f, err := shiftsFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open shifts file"})
		return
	}
	defer f.Close()

	n, err := h.Store.ImportShiftsCSV(c.Request.Context(), c.Param("restaurant"), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.RecordUsage(c, n, 0)
	c.JSON(http.StatusOK, gin.H{"imported": n})
}

// TransitionShift moves a shift along the status machine
func (h *Handler) TransitionShift(c *gin.Context) {
	var req struct {
		Status models.ShiftStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shift, err := h.Store.TransitionShift(c.Request.Context(), c.Param("restaurant"), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// AnalyzeSnapshot runs the analysis, and optionally the suggestions, on a
// snapshot posted in the body. Nothing is read from or written to the store.
func (h *Handler) AnalyzeSnapshot(c *gin.Context) {
	var req struct {
		scheduling.Snapshot
		Date    string `json:"date" binding:"required"`
		Suggest bool   `json:"suggest"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !keyInfo(c).Allows(req.RestaurantID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "API key is not valid for restaurant " + req.RestaurantID})
		return
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		h.fail(c, &scheduler.ValidationError{Field: "date", Reason: err.Error()})
		return
	}

	snap := scheduling.NewSnapshotStore(&req.Snapshot)
	f := scheduling.NewFacade(snap, snap, h.lg())
	if h.Facade != nil {
		f.Weights = h.Facade.Weights
		f.Rules = h.Facade.Rules
	}

	ctx := c.Request.Context()
	a, err := f.AnalyzeSchedule(ctx, req.RestaurantID, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := gin.H{"analysis": a}
	if req.Suggest {
		set, err := f.SuggestOpenAssignments(ctx, req.RestaurantID, date)
		if err != nil {
			h.fail(c, err)
			return
		}
		resp["suggestions"] = set
	}

	h.RecordUsage(c, a.ShiftCount, a.StaffCount)
	c.JSON(http.StatusOK, resp)
}
