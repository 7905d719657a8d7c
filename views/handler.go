package views

import (
	"log"
	"net/http"
	"strings"

	"biolink_back/kv"
	"biolink_back/localdb"
	"github.com/gin-gonic/gin"
)

// Module exposes the view-counter endpoints.
type Module struct {
	counter *Counter
}

type setViewsRequest struct {
	Views *int64 `json:"views"`
}

// RegisterRoutes bootstraps the /api/views endpoints. Both storage tiers
// are optional at startup; the counter degrades per tier at request time.
func RegisterRoutes(router *gin.Engine) (*Module, error) {
	client, err := kv.GetRedisClient()
	if err != nil {
		log.Printf("views: key-value store unavailable: %v", err)
	}

	db, err := localdb.Open()
	if err != nil {
		log.Printf("views: local counter tier unavailable: %v", err)
		db = nil
	}

	counter, err := NewCounter(client, db)
	if err != nil {
		return nil, err
	}

	module := &Module{counter: counter}
	module.attach(router)
	return module, nil
}

func (m *Module) attach(router gin.IRouter) {
	group := router.Group("/api/views")
	group.GET("", m.handleGetViews)
	group.POST("", m.handleIncrementViews)
	group.PUT("", m.handleSetViews)
}

func (m *Module) handleGetViews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"views": m.counter.Current(c.Request.Context())})
}

// handleIncrementViews counts one view. The visitor identifier is accepted
// for logging only; deduplication stays client-session-scoped.
func (m *Module) handleIncrementViews(c *gin.Context) {
	if visitor := strings.TrimSpace(c.GetHeader("X-Visitor-Id")); visitor != "" {
		log.Printf("views: counted view for visitor %s", visitor)
	}

	total, err := m.counter.Increment(c.Request.Context())
	if err != nil {
		log.Printf("views: increment failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to increment views"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": total, "message": "view counted"})
}

func (m *Module) handleSetViews(c *gin.Context) {
	var req setViewsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Views == nil || *req.Views < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "views must be a non-negative number"})
		return
	}

	total, err := m.counter.Set(c.Request.Context(), *req.Views)
	if err != nil {
		log.Printf("views: set failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set views"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": total, "message": "views updated"})
}
