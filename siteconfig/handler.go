package siteconfig

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"biolink_back/authorization"
	"biolink_back/kv"
	"biolink_back/localdb"
	"github.com/gin-gonic/gin"
)

// Module wires the configuration endpoints to the persistence chain.
type Module struct {
	store     *DocumentStore
	media     *MediaStorage
	snapshots *SnapshotStore
	hub       *Hub
	secret    *authorization.Secret
}

type saveRequest struct {
	Password string         `json:"password"`
	Config   map[string]any `json:"config"`
}

type deleteRequest struct {
	Password string `json:"password"`
}

type snapshotDTO struct {
	ID        uint64 `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

// RegisterRoutes bootstraps the /api/config endpoints. A missing Redis or
// local database degrades the module rather than failing startup: reads
// fall back to "no data" and snapshot history is disabled.
func RegisterRoutes(router *gin.Engine) (*Module, error) {
	client, err := kv.GetRedisClient()
	if err != nil {
		log.Printf("siteconfig: key-value store unavailable: %v", err)
	}

	media, err := NewMediaStorageFromEnv()
	if err != nil {
		return nil, err
	}

	var snapshots *SnapshotStore
	if db, err := localdb.Open(); err != nil {
		log.Printf("siteconfig: snapshot history disabled: %v", err)
	} else if snapshots, err = NewSnapshotStore(db); err != nil {
		log.Printf("siteconfig: snapshot history disabled: %v", err)
		snapshots = nil
	}

	module := &Module{
		store:     NewDocumentStore(client),
		media:     media,
		snapshots: snapshots,
		hub:       NewHub(),
		secret:    authorization.SecretFromEnv(),
	}
	module.attach(router)
	return module, nil
}

func (m *Module) attach(router gin.IRouter) {
	group := router.Group("/api/config")
	group.GET("", m.handleGetConfig)
	group.POST("", m.handleSaveConfig)
	group.DELETE("", m.handleDeleteConfig)
	group.GET("/backups", m.handleListBackups)
	group.GET("/ws", m.handleSubscribe)
}

// handleGetConfig returns the stored document. Reads never fail the
// caller: any backend trouble is logged and reported as "no data".
func (m *Module) handleGetConfig(c *gin.Context) {
	doc, err := m.store.Load(c.Request.Context())
	if err != nil {
		log.Printf("siteconfig: load config failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}
	if doc == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": doc})
}

func (m *Module) handleSaveConfig(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request payload"})
		return
	}

	if !m.secret.Verify(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid password"})
		return
	}

	if len(req.Config) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "config is required"})
		return
	}

	doc := m.media.OffloadInlineMedia(c.Request.Context(), req.Config)
	doc = StripOversizedMedia(doc)

	payload, err := json.Marshal(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to encode config"})
		return
	}

	if err := m.store.Save(c.Request.Context(), payload); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "storage is not configured"})
			return
		}
		log.Printf("siteconfig: save config failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to save config"})
		return
	}

	if err := m.snapshots.Append(payload); err != nil {
		log.Printf("siteconfig: append snapshot failed: %v", err)
	}
	m.hub.Broadcast("config-updated")

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "configuration saved"})
}

func (m *Module) handleDeleteConfig(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request payload"})
		return
	}

	if !m.secret.Verify(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid password"})
		return
	}

	if err := m.store.Delete(c.Request.Context()); err != nil {
		log.Printf("siteconfig: delete config failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to reset config"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "configuration reset"})
}

func (m *Module) handleListBackups(c *gin.Context) {
	if !m.secret.Verify(strings.TrimSpace(c.GetHeader("X-Admin-Password"))) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid password"})
		return
	}

	limit := 20
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	snapshots, err := m.snapshots.Recent(limit)
	if err != nil {
		log.Printf("siteconfig: list snapshots failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list backups"})
		return
	}

	backups := make([]snapshotDTO, 0, len(snapshots))
	for _, snapshot := range snapshots {
		backups = append(backups, snapshotDTO{ID: snapshot.ID, CreatedAt: snapshot.CreatedAt.Unix()})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "backups": backups})
}

func (m *Module) handleSubscribe(c *gin.Context) {
	if err := m.hub.Subscribe(c.Writer, c.Request); err != nil {
		log.Printf("siteconfig: websocket upgrade failed: %v", err)
	}
}
