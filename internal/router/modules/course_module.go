package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	handlers "github.com/oksasatya/devcamper-api/internal/interface/http"
)

type CourseModule struct {
	Handler *handlers.CourseHandler
	Guards  Guards
}

func NewCourseModule(h *handlers.CourseHandler, g Guards) *CourseModule {
	return &CourseModule{Handler: h, Guards: g}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	courses := rg.Group("/courses")
	courses.GET("", m.Handler.List)
	courses.GET("/:id", m.Handler.Get)

	owner := courses.Group("")
	owner.Use(m.Guards.protect(), m.Guards.roles(entity.RolePublisher, entity.RoleAdmin))
	{
		owner.PUT("/:id", m.Handler.Update)
		owner.DELETE("/:id", m.Handler.Delete)
	}
}
