package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		allowed         []string
		origin          string
		wantStatus      int
		wantOrigin      string
		wantCredentials string
	}{
		{"no list allows any origin without credentials", nil, "https://evil.example", http.StatusOK, "*", ""},
		{"wildcard allows any origin without credentials", []string{"*"}, "https://evil.example", http.StatusOK, "*", ""},
		{"listed origin gets credentials", []string{"https://vote.example.edu"}, "https://vote.example.edu", http.StatusOK, "https://vote.example.edu", "true"},
		{"unlisted origin is rejected", []string{"https://vote.example.edu"}, "https://evil.example", http.StatusForbidden, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORSMiddleware(tt.allowed))
			router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCredentials {
				t.Errorf("Allow-Credentials = %q, want %q", got, tt.wantCredentials)
			}
		})
	}
}
