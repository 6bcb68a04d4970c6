package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the name of the cookie carrying the auth token.
const TokenCookie = "token"

type CookieManager struct {
	Domain string
	Secure bool
	TTL    time.Duration
}

func NewCookie(domain string, secure bool, ttl time.Duration) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure, TTL: ttl}
}

// SetToken stores the auth token in an HTTP-only cookie.
func (m *CookieManager) SetToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, token, int(m.TTL.Seconds()), "/", m.Domain, m.Secure, true)
}

// ClearToken overwrites the auth cookie with "none" for ten seconds.
func (m *CookieManager) ClearToken(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, "none", 10, "/", m.Domain, m.Secure, true)
}
