package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authFunc func(ctx context.Context, token string) (*entity.User, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	return f(ctx, token)
}

var tokens = authFunc(func(_ context.Context, token string) (*entity.User, error) {
	switch token {
	case "publisher-token":
		return &entity.User{ID: "u1", Role: entity.RolePublisher}, nil
	case "user-token":
		return &entity.User{ID: "u2", Role: entity.RoleUser}, nil
	}
	return nil, apperror.Unauthorized("Not authorized to access this route")
})

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(Recovery(nil), ErrorHandler(nil), RequestIDMiddleware(), RealIP())
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestProtect(t *testing.T) {
	r := newEngine()
	reached := 0
	r.GET("/me", Protect(tokens), func(c *gin.Context) {
		reached++
		c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID})
	})

	cases := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{"bearer", "Bearer publisher-token", "", http.StatusOK},
		{"cookie", "", "publisher-token", http.StatusOK},
		{"header wins over cookie", "Bearer user-token", "publisher-token", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"malformed", "Bearer garbage", "", http.StatusUnauthorized},
		{"logged out cookie", "", "none", http.StatusUnauthorized},
		{"basic scheme", "Basic publisher-token", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusUnauthorized {
				assert.Equal(t, map[string]any{"success": false, "error": "Not authorized to access this route"}, decode(t, w))
			}
		})
	}
	assert.Equal(t, 3, reached)
}

func TestAuthorize(t *testing.T) {
	r := newEngine()
	r.POST("/bootcamps", Protect(tokens), Authorize(entity.RolePublisher, entity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/bootcamps", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "User role user is not authorized to access this route", decode(t, w)["error"])

	req = httptest.NewRequest(http.MethodPost, "/bootcamps", nil)
	req.Header.Set("Authorization", "Bearer publisher-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestErrorHandler(t *testing.T) {
	r := newEngine()
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(apperror.NotFound("Bootcamp not found with id of 1")) })
	r.GET("/dup", func(c *gin.Context) { _ = c.Error(apperror.DuplicateKey(errors.New("E11000"))) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("driver exploded")) })
	r.GET("/panic", func(c *gin.Context) { panic("nil map") })

	cases := map[string]struct {
		status int
		msg    string
	}{
		"/missing": {http.StatusNotFound, "Bootcamp not found with id of 1"},
		"/dup":     {http.StatusBadRequest, "Duplicate field value entered"},
		"/boom":    {http.StatusInternalServerError, "Server Error"},
		"/panic":   {http.StatusInternalServerError, "Server Error"},
	}
	for path, want := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want.status, w.Code, path)
		assert.Equal(t, map[string]any{"success": false, "error": want.msg}, decode(t, w), path)
	}
}

func TestRequestIDAndRealIP(t *testing.T) {
	r := newEngine()
	require.NoError(t, TrustProxies(r, nil))
	r.GET("/ip", func(c *gin.Context) {
		c.String(http.StatusOK, ClientIP(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "192.0.2.1", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ip", nil))
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}

func TestRealIP_IgnoresForwardingHeadersFromUntrustedPeer(t *testing.T) {
	r := newEngine()
	require.NoError(t, TrustProxies(r, nil))
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, ClientIP(c)) })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	req.Header.Set("CF-Connecting-IP", "127.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "192.0.2.1", w.Body.String())
}

func TestRealIP_TrustedProxyForwardsClient(t *testing.T) {
	r := newEngine()
	require.NoError(t, TrustProxies(r, []string{"192.0.2.0/24"}))
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, ClientIP(c)) })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "198.51.100.4", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "203.0.113.9", w.Body.String())
}

func TestTrustProxies_RejectsBadEntry(t *testing.T) {
	assert.Error(t, TrustProxies(gin.New(), []string{"not-an-ip"}))
}

func TestAllowPrivateIP_SpoofedHeaderDoesNotBypass(t *testing.T) {
	r := newEngine()
	require.NoError(t, TrustProxies(r, nil))
	allow := AllowPrivateIP()
	var bypassed bool
	r.GET("/ip", func(c *gin.Context) {
		bypassed = allow(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, bypassed)

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, bypassed)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer func() { _ = rdb.Close() }()

	r := newEngine()
	r.GET("/limited", RateLimit(rdb, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/disabled", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/disabled", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP()
	for ip, want := range map[string]bool{"127.0.0.1": true, "10.1.2.3": true, "8.8.8.8": false, "bogus": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set(CtxRealIPKey, ip)
		assert.Equal(t, want, allow(c), ip)
	}
}
