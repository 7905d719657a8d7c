package client

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"biolink_back/siteconfig"
	"github.com/google/uuid"
)

const (
	blobCacheFile = "large-data.json"
	visitorIDFile = "visitor-id"
)

// LocalData is the device-scoped fallback cache. It mirrors only the
// inline-encoded media fields that the server-side filter strips, so this
// device keeps its own uploads across restarts even though the server copy
// was emptied. It also holds the per-device visitor identifier and the
// per-process "already counted" session marker.
type LocalData struct {
	dir string

	mu             sync.Mutex
	sessionCounted bool
}

// NewLocalData roots the cache at the given directory, creating it when
// possible. Failures are tolerated; every operation degrades to empty
// results or silent drops.
func NewLocalData(dir string) *LocalData {
	if strings.TrimSpace(dir) == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("client: create local data dir: %v", err)
	}
	return &LocalData{dir: dir}
}

// SaveBlobs mirrors the inline-encoded media fields of the config into the
// cache. Plain URLs are never duplicated here; they are cheap to refetch
// and already persisted server-side. Best-effort: write failures are
// logged and swallowed so a save is never blocked by the mirror.
func (l *LocalData) SaveBlobs(cfg siteconfig.SiteConfig) {
	if l == nil {
		return
	}

	blobs := make(map[string]string)
	for field, value := range blobValues(cfg) {
		if siteconfig.IsInlineData(value) {
			blobs[field] = value
		}
	}
	if len(blobs) == 0 {
		return
	}

	payload, err := json.Marshal(blobs)
	if err != nil {
		log.Printf("client: encode local blob cache: %v", err)
		return
	}
	if err := os.WriteFile(filepath.Join(l.dir, blobCacheFile), payload, 0o644); err != nil {
		log.Printf("client: write local blob cache: %v", err)
	}
}

// LoadBlobs returns the cached blob fields. A missing or corrupt cache
// reads as empty, never as an error.
func (l *LocalData) LoadBlobs() map[string]string {
	if l == nil {
		return map[string]string{}
	}

	raw, err := os.ReadFile(filepath.Join(l.dir, blobCacheFile))
	if err != nil {
		return map[string]string{}
	}
	var blobs map[string]string
	if err := json.Unmarshal(raw, &blobs); err != nil {
		return map[string]string{}
	}
	if blobs == nil {
		return map[string]string{}
	}
	return blobs
}

// VisitorID returns the persistent per-device identifier, generating one
// on first use. An unwritable cache yields an ephemeral identifier.
func (l *LocalData) VisitorID() string {
	path := filepath.Join(l.dir, visitorIDFile)
	if raw, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id
		}
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id), 0o644); err != nil {
		log.Printf("client: persist visitor id: %v", err)
	}
	return id
}

// SessionCounted reports whether this process already counted a view.
func (l *LocalData) SessionCounted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessionCounted
}

// MarkSessionCounted records that this process counted its view. The
// marker is deliberately session-scoped: counting is at-least-once and
// deduplication is best-effort per session.
func (l *LocalData) MarkSessionCounted() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessionCounted = true
}

// ClearSessionCounted drops the session marker.
func (l *LocalData) ClearSessionCounted() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessionCounted = false
}

// blobValues extracts the media-capable fields of the config by their wire
// names, omitting empty values.
func blobValues(cfg siteconfig.SiteConfig) map[string]string {
	values := map[string]string{
		"avatar":          cfg.Avatar,
		"backgroundImage": cfg.BackgroundImage,
		"backgroundVideo": cfg.BackgroundVideo,
		"musicUrl":        cfg.MusicURL,
		"customCursor":    cfg.CustomCursor,
		"discordAvatar":   cfg.DiscordAvatar,
	}
	for field, value := range values {
		if value == "" {
			delete(values, field)
		}
	}
	return values
}
