package middleware

import (
	"github.com/gin-gonic/gin"
)

const CtxRealIPKey = "real_ip"

// ForwardingHeaders are consulted, in order, for the client address when the
// direct peer is a trusted proxy.
var ForwardingHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// TrustProxies makes c.ClientIP honour ForwardingHeaders only for requests
// arriving from one of proxies (IPs or CIDRs). An empty list trusts no proxy,
// so the client address is always the socket peer.
func TrustProxies(r *gin.Engine, proxies []string) error {
	r.ForwardedByClientIP = true
	r.RemoteIPHeaders = append([]string(nil), ForwardingHeaders...)
	r.TrustedPlatform = ""
	if len(proxies) == 0 {
		proxies = nil
	}
	return r.SetTrustedProxies(proxies)
}

// RealIP stores the client address under CtxRealIPKey. The address comes from
// c.ClientIP, so forwarding headers count only behind a trusted proxy.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRealIPKey, c.ClientIP())
		c.Next()
	}
}

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// ClientIP is the address recorded by RealIP.
func ClientIP(c *gin.Context) string {
	return ipFromCtx(c)
}
