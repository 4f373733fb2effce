package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/arnavshah/roster-compliance-go/pkg/auth"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduler"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
	"github.com/arnavshah/roster-compliance-go/pkg/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Version is reported by the index route
const Version = "1.0.0"

// Handler contains dependencies for the route handlers
type Handler struct {
	Store  *store.Store
	Facade *scheduling.Facade
	Auth   *auth.Manager
	Logger *log.Logger
}

func (h *Handler) lg() *log.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return log.Default()
}

// NewRouter registers every route on a fresh engine. The server binary and
// the serverless entry point share it.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), RequestID())

	r.GET("/", h.Index)
	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
		admin.POST("/snapshot", h.ImportSnapshot)
	}

	// Roster Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/analyze", h.AnalyzeSnapshot)
		api.POST("/validate", h.ValidateInput)
		api.GET("/usage", h.GetMyUsage)

		rest := api.Group("/restaurants/:restaurant")
		rest.Use(h.RestaurantScope())
		{
			rest.GET("/analysis", h.Analysis)
			rest.GET("/analysis.xlsx", h.AnalysisXLSX)
			rest.GET("/suggestions", h.Suggestions)
			rest.GET("/violations", h.ListViolations)
			rest.POST("/shifts/csv", h.ImportShiftsCSV)
			rest.PATCH("/shifts/:id/status", h.TransitionShift)
		}
	}
	return r
}

// Index reports the service name and version
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Roster Compliance API",
		"version": Version,
	})
}

// RequestID tags every request and response with an X-Request-ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func bearer(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	// Strip "Bearer " if present
	if len(token) > 7 && token[:7] == "Bearer " {
		token = token[7:]
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC API key, tracks it and enforces the
// daily request limit.
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		info, err := h.Auth.VerifyKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		apiKey, err := h.Store.TouchKey(c.Request.Context(), key, info.Name, info.RestaurantID)
		if err != nil {
			h.lg().Printf("TouchKey failed: %v", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Could not load API key"})
			return
		}

		used, err := h.Store.UsageToday(c.Request.Context(), apiKey.ID)
		if err != nil {
			// the limit cannot be enforced without a count
			h.lg().Printf("UsageToday failed for key %d: %v", apiKey.ID, err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Could not check rate limit"})
			return
		}
		if apiKey.RateLimit > 0 && used >= apiKey.RateLimit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Daily rate limit exceeded"})
			return
		}

		c.Set("apiKey", apiKey)
		c.Set("keyInfo", info)
		c.Next()

		// every request past the limit check counts, with or without a roster
		if !c.GetBool(usageRecorded) {
			h.RecordUsage(c, 0, 0)
		}
	}
}

// RestaurantScope rejects keys that are not bound to :restaurant
func (h *Handler) RestaurantScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !keyInfo(c).Allows(c.Param("restaurant")) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": auth.ErrWrongScope.Error()})
			return
		}
		c.Next()
	}
}

func keyInfo(c *gin.Context) *auth.KeyInfo {
	if raw, ok := c.Get("keyInfo"); ok {
		return raw.(*auth.KeyInfo)
	}
	return &auth.KeyInfo{}
}

const usageRecorded = "usageRecorded"

// RecordUsage bumps today's counters for the calling key once per request.
// Failures are logged and never fail the request.
func (h *Handler) RecordUsage(c *gin.Context, shiftCount, staffCount int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists || c.GetBool(usageRecorded) {
		return
	}
	c.Set(usageRecorded, true)
	apiKey := apiKeyRaw.(*store.APIKey)
	if err := h.Store.RecordUsage(c.Request.Context(), apiKey.ID, shiftCount, staffCount); err != nil {
		h.lg().Printf("RecordUsage failed for key %d: %v", apiKey.ID, err)
	}
}

// fail maps domain errors onto status codes
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduler.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, scheduler.ErrStoreUnavailable):
		h.lg().Printf("[%s] store unavailable: %v", c.GetString("requestID"), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Roster store unavailable"})
	default:
		h.lg().Printf("[%s] internal error: %v", c.GetString("requestID"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Store.FindUser(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Auth.CreateToken(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}
