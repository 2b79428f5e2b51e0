package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(tokens *auth.TokenService, revoked auth.Revocations) *gin.Engine {
	r := gin.New()
	g := r.Group("/", Auth(tokens, revoked))
	g.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })
	g.GET("/admin", AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func call(r http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	revoked := auth.NewMemoryRevocations()
	r := protectedRouter(tokens, revoked)

	admin, adminID, err := tokens.Sign(auth.Identity{ID: "a-1", Role: "ADMIN"})
	require.NoError(t, err)
	patient, _, err := tokens.Sign(auth.Identity{ID: "p-1", Role: "PATIENT"})
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call(r, "/me", "").Code)
	})
	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call(r, "/me", "Token "+admin).Code)
	})
	t.Run("bad token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call(r, "/me", "Bearer garbage").Code)
	})
	t.Run("valid token", func(t *testing.T) {
		w := call(r, "/me", "Bearer "+admin)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "a-1", w.Body.String())
	})
	t.Run("admin only", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, call(r, "/admin", "Bearer "+admin).Code)
		assert.Equal(t, http.StatusForbidden, call(r, "/admin", "Bearer "+patient).Code)
	})
	t.Run("revoked", func(t *testing.T) {
		require.NoError(t, revoked.Revoke(context.Background(), adminID.TokenID, time.Hour))
		w := call(r, "/me", "Bearer "+admin)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "token_revoked")
	})
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(6) // burst of 1
	r := gin.New()
	r.POST("/contact", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, send("10.0.0.2"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000, https://clinic.example"))
	r.GET("/api/services", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/services", nil)
	req.Header.Set("Origin", "https://clinic.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://clinic.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/services", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
