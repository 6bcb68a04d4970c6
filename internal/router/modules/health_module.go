package modules

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devcamper-api/internal/interface/middleware"
)

// Check reports whether a backing service is reachable.
type Check func(ctx context.Context) error

// HealthModule exposes a health check over the configured backends and the expvar dump.
type HealthModule struct {
	Checks map[string]Check
	Guards Guards
}

func NewHealthModule(checks map[string]Check, g Guards) *HealthModule {
	return &HealthModule{Checks: checks, Guards: g}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rl := m.Guards.limit(120, time.Minute, middleware.KeyByIP())
	rg.GET("/health", rl, m.health)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}

func (m *HealthModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	services := make(map[string]string, len(m.Checks))
	for name, check := range m.Checks {
		if err := check(ctx); err != nil {
			services[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		services[name] = "ok"
	}
	c.JSON(status, gin.H{"success": status == http.StatusOK, "data": services})
}
