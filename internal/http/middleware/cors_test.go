package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runCORS(t *testing.T, origins []string, method, origin, requestMethod string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	handlerRan := false
	h := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/health", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if requestMethod != "" {
		req.Header.Set("Access-Control-Request-Method", requestMethod)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, handlerRan
}

func TestCORSOriginMatching(t *testing.T) {
	tests := []struct {
		name      string
		origins   []string
		origin    string
		wantAllow string
	}{
		{"listed origin allowed", []string{"https://portal.example.com"}, "https://portal.example.com", "https://portal.example.com"},
		{"unknown origin denied", []string{"https://portal.example.com"}, "https://evil.example", ""},
		{"wildcard echoes origin", []string{"*"}, "https://anything.example", "https://anything.example"},
		{"no origin header", []string{"*"}, "", ""},
		{"blank entries ignored", []string{"", " ", "https://portal.example.com"}, "https://portal.example.com", "https://portal.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, handlerRan := runCORS(t, tt.origins, http.MethodGet, tt.origin, "")
			assert.True(t, handlerRan)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllow != "" {
				assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
				assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Headers"))
			}
		})
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	rec, handlerRan := runCORS(t, []string{"https://portal.example.com"},
		http.MethodOptions, "https://portal.example.com", http.MethodPost)

	assert.False(t, handlerRan, "preflight must not reach the handler")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://portal.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPlainOptionsPassesThrough(t *testing.T) {
	// OPTIONS without Access-Control-Request-Method is not a preflight.
	_, handlerRan := runCORS(t, []string{"*"}, http.MethodOptions, "https://portal.example.com", "")
	assert.True(t, handlerRan)
}
