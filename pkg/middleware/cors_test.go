package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupCORSRouter(origins ...string) *gin.Engine {
	router := gin.New()
	router.Use(CORS(DefaultCORSConfig(origins)))
	router.GET("/api/v1/tenants/public/current", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCORS(t *testing.T) {
	router := setupCORSRouter("*.example.com", "https://admin.internal")

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
	}{
		{"tenant subdomain", http.MethodGet, "https://acme.example.com", http.StatusOK, "https://acme.example.com"},
		{"tenant subdomain with port", http.MethodGet, "http://acme.example.com:3000", http.StatusOK, "http://acme.example.com:3000"},
		{"exact origin", http.MethodGet, "https://admin.internal", http.StatusOK, "https://admin.internal"},
		{"foreign origin", http.MethodGet, "https://evil.test", http.StatusOK, ""},
		{"preflight allowed", http.MethodOptions, "https://acme.example.com", http.StatusNoContent, "https://acme.example.com"},
		{"preflight rejected", http.MethodOptions, "https://evil.test", http.StatusForbidden, ""},
		{"no origin", http.MethodGet, "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/tenants/public/current", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllowed, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_Wildcard(t *testing.T) {
	router := setupCORSRouter("*")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenants/public/current", nil)
	req.Header.Set("Origin", "https://anything.test")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://anything.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
