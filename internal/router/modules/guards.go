package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/interface/middleware"
)

// Guards carries the auth and rate limit middleware shared by every module.
// A nil Redis client disables rate limiting.
type Guards struct {
	Auth  middleware.Authenticator
	Redis *redis.Client
	Allow middleware.AllowFunc
}

func (g Guards) protect() gin.HandlerFunc {
	return middleware.Protect(g.Auth)
}

func (g Guards) roles(roles ...entity.Role) gin.HandlerFunc {
	return middleware.Authorize(roles...)
}

func (g Guards) limit(max int, window time.Duration, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(g.Redis, max, window, key, g.Allow)
}
