package router

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devcamper-api/internal/container"
	handlers "github.com/oksasatya/devcamper-api/internal/interface/http"
	"github.com/oksasatya/devcamper-api/internal/interface/middleware"
	"github.com/oksasatya/devcamper-api/internal/router/modules"
	"github.com/oksasatya/devcamper-api/pkg/helpers"
)

// NewEngine builds the gin engine with the global middleware chain and every module mounted.
func NewEngine(c *container.Container) *gin.Engine {
	cfg := c.Config
	r := gin.New()
	if err := middleware.TrustProxies(r, cfg.TrustedProxyList()); err != nil {
		c.Logger.WithError(err).Error("invalid TRUSTED_PROXIES; forwarding headers are ignored")
		_ = middleware.TrustProxies(r, nil)
	}
	r.Use(
		middleware.Recovery(c.Logger),
		middleware.RequestIDMiddleware(),
		middleware.RealIP(),
	)
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(c.Logger))
	}
	r.Use(middleware.ErrorHandler(c.Logger))
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.NoRoute(middleware.NotFound())

	reg := NewRegistry(r, cfg.APIPrefix)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// InitModules builds handlers from the container and registers every feature module.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config
	guards := modules.Guards{Auth: c.Auth}
	if cfg.RateLimitEnabled {
		guards.Redis = c.Redis
	}
	if !cfg.IsProduction() {
		guards.Allow = middleware.AllowPrivateIP()
	}

	cookies := c.Cookies
	if cookies == nil {
		cookies = helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure, cfg.JWTCookieExpire)
	}

	bootcamps := handlers.NewBootcampHandler(c.Bootcamps)
	courses := handlers.NewCourseHandler(c.Courses)
	reviews := handlers.NewReviewHandler(c.Reviews)

	r.Add(
		modules.NewHealthModule(healthChecks(c), guards),
		modules.NewAuthModule(handlers.NewAuthHandler(c.Auth, cookies, cfg.APIPrefix, c.Logger), guards),
		modules.NewBootcampModule(bootcamps, courses, reviews, guards),
		modules.NewCourseModule(courses, guards),
		modules.NewReviewModule(reviews, guards),
		modules.NewUserModule(handlers.NewUserHandler(c.Users), guards),
	)
}

func healthChecks(c *container.Container) map[string]modules.Check {
	checks := map[string]modules.Check{}
	if c.Mongo != nil {
		checks["mongo"] = func(ctx context.Context) error { return c.Mongo.Ping(ctx, nil) }
	}
	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }
	}
	if c.PGPool != nil {
		checks["postgres"] = c.PGPool.Ping
	}
	if c.ES != nil {
		checks["elasticsearch"] = func(ctx context.Context) error {
			res, err := c.ES.Ping(c.ES.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer func() { _ = res.Body.Close() }()
			if res.IsError() {
				return errors.New(res.Status())
			}
			return nil
		}
	}
	return checks
}
