package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// The rate limiter guards the public routes only; health and metrics answer
// regardless of how hard one client hammers the public surface.
func TestPublicGroupRateLimitSparesInfraRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	public := publicGroup(r, 1)
	public.GET("/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	get := func(path string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.9:4455"
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := get("/limited"); code != http.StatusOK {
		t.Fatalf("first public request = %d", code)
	}
	if code := get("/limited"); code != http.StatusTooManyRequests {
		t.Fatalf("second public request = %d, want 429", code)
	}
	for i := 0; i < 5; i++ {
		if code := get("/healthz"); code != http.StatusOK {
			t.Fatalf("healthz request %d = %d, want 200", i, code)
		}
	}
}
