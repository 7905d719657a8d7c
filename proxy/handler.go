// Package proxy fetches externally-hosted media on behalf of the browser
// so cross-origin avatars and backgrounds can be displayed.
package proxy

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Handler streams remote media through with the upstream content type.
type Handler struct {
	httpClient *http.Client
}

// RegisterRoutes mounts the proxy endpoint.
func RegisterRoutes(router *gin.Engine) *Handler {
	handler := &Handler{
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
	router.GET("/api/proxy", handler.handleProxy)
	return handler
}

func (h *Handler) handleProxy(c *gin.Context) {
	target := strings.TrimSpace(c.Query("url"))
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url parameter is required"})
		return
	}

	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute URL"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url"})
		return
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		log.Printf("proxy: fetch %s failed: %v", target, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch url"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.JSON(resp.StatusCode, gin.H{"error": "failed to fetch url"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("Access-Control-Allow-Origin", "*")
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, nil)
}
