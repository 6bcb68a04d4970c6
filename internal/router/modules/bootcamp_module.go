package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	handlers "github.com/oksasatya/devcamper-api/internal/interface/http"
	"github.com/oksasatya/devcamper-api/internal/interface/middleware"
)

// BootcampModule wires /bootcamps and the nested course and review routes.
type BootcampModule struct {
	Bootcamps *handlers.BootcampHandler
	Courses   *handlers.CourseHandler
	Reviews   *handlers.ReviewHandler
	Guards    Guards
}

func NewBootcampModule(b *handlers.BootcampHandler, c *handlers.CourseHandler, r *handlers.ReviewHandler, g Guards) *BootcampModule {
	return &BootcampModule{Bootcamps: b, Courses: c, Reviews: r, Guards: g}
}

func (m *BootcampModule) Register(rg *gin.RouterGroup) {
	g := m.Guards
	publisher := []gin.HandlerFunc{g.protect(), g.roles(entity.RolePublisher, entity.RoleAdmin)}
	reviewer := []gin.HandlerFunc{g.protect(), g.roles(entity.RoleUser, entity.RoleAdmin)}

	bc := rg.Group("/bootcamps")
	bc.GET("", m.Bootcamps.List)
	bc.GET("/search", g.limit(60, time.Minute, middleware.KeyByIP()), m.Bootcamps.Search)
	bc.GET("/radius/:zipcode/:distance", m.Bootcamps.WithinRadius)
	bc.GET("/:id", m.Bootcamps.Get)
	bc.POST("", append(publisher, m.Bootcamps.Create)...)
	bc.PUT("/:id", append(publisher, m.Bootcamps.Update)...)
	bc.DELETE("/:id", append(publisher, m.Bootcamps.Delete)...)
	bc.PUT("/:id/photo", append(publisher, g.limit(20, time.Minute, middleware.KeyByUserID()), m.Bootcamps.UploadPhoto)...)

	bc.GET("/:id/courses", m.Courses.ListForBootcamp)
	bc.POST("/:id/courses", append(publisher, m.Courses.Create)...)
	bc.GET("/:id/reviews", m.Reviews.ListForBootcamp)
	bc.POST("/:id/reviews", append(reviewer, m.Reviews.Create)...)
}
