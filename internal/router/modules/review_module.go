package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	handlers "github.com/oksasatya/devcamper-api/internal/interface/http"
)

type ReviewModule struct {
	Handler *handlers.ReviewHandler
	Guards  Guards
}

func NewReviewModule(h *handlers.ReviewHandler, g Guards) *ReviewModule {
	return &ReviewModule{Handler: h, Guards: g}
}

func (m *ReviewModule) Register(rg *gin.RouterGroup) {
	reviews := rg.Group("/reviews")
	reviews.GET("", m.Handler.List)
	reviews.GET("/:id", m.Handler.Get)

	owner := reviews.Group("")
	owner.Use(m.Guards.protect(), m.Guards.roles(entity.RoleUser, entity.RoleAdmin))
	{
		owner.PUT("/:id", m.Handler.Update)
		owner.DELETE("/:id", m.Handler.Delete)
	}
}
