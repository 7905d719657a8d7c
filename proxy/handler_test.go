package proxy

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := &Handler{httpClient: &http.Client{Timeout: 5 * time.Second}}
	router.GET("/api/proxy", handler.handleProxy)
	return router
}

func TestProxyRequiresURL(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/proxy", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProxyRejectsRelativeURL(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/proxy?url=/local/path", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProxyStreamsUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != browserUserAgent {
			t.Errorf("upstream saw User-Agent %q", ua)
		}
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer upstream.Close()

	router := newTestRouter()
	rec := httptest.NewRecorder()
	target := "/api/proxy?url=" + url.QueryEscape(upstream.URL+"/pic.webp")
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/webp" {
		t.Fatalf("Content-Type = %q, want image/webp", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=86400" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if rec.Body.String() != "image-bytes" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestProxyPropagatesUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	router := newTestRouter()
	rec := httptest.NewRecorder()
	target := "/api/proxy?url=" + url.QueryEscape(upstream.URL+"/missing.png")
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want upstream 404", rec.Code)
	}
}
