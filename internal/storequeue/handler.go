package storequeue

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/api/middleware"
)

// Handler exposes the queue service over HTTP. The contract is flat by
// design: store players treat any non-2xx as "re-poll later", so every
// failure — store not found included — collapses into a 400 envelope.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Router builds the store-facing engine. Preflight requests are
// answered by the CORS middleware with 204 and no body, independent of
// store validation.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.SilentLogger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Method %s not allowed", c.Request.Method)})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Store ID is required"})
	})

	r.GET("/:storeId", h.GetStatus)
	r.POST("/:storeId", h.PostHeartbeat)

	return r
}

// GetStatus returns the store summary, queue snapshot and active
// emergency override (or null) for one store
func (h *Handler) GetStatus(c *gin.Context) {
	resp, err := h.svc.Status(c.Request.Context(), c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PostHeartbeat records a status report from a store player
func (h *Handler) PostHeartbeat(c *gin.Context) {
	var input struct {
		Status         string `json:"status" binding:"required"`
		CurrentTrackID *uint  `json:"currentTrackId"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Heartbeat(c.Request.Context(), c.Param("storeId"), input.Status, input.CurrentTrackID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Heartbeat recorded",
		"timestamp": time.Now().UTC(),
	})
}
