package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devcamper-api/internal/application"
	"github.com/oksasatya/devcamper-api/pkg/response"
)

type CourseHandler struct {
	Service *application.CourseService
}

func NewCourseHandler(service *application.CourseService) *CourseHandler {
	return &CourseHandler{Service: service}
}

type createCourseRequest struct {
	Title                string   `json:"title" binding:"required,max=100"`
	Description          string   `json:"description" binding:"required"`
	Weeks                string   `json:"weeks" binding:"required"`
	Tuition              *float64 `json:"tuition" binding:"required,min=0"`
	MinimumSkill         string   `json:"minimumSkill" binding:"required,skill"`
	ScholarshipAvailable bool     `json:"scholarshipAvailable"`
}

type updateCourseRequest struct {
	Title                *string  `json:"title" binding:"omitempty,min=1,max=100"`
	Description          *string  `json:"description" binding:"omitempty,min=1"`
	Weeks                *string  `json:"weeks" binding:"omitempty,min=1"`
	Tuition              *float64 `json:"tuition" binding:"omitempty,min=0"`
	MinimumSkill         *string  `json:"minimumSkill" binding:"omitempty,skill"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}

// List GET /courses
func (h *CourseHandler) List(c *gin.Context) {
	res, err := h.Service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Paged(c, res)
}

// ListForBootcamp GET /bootcamps/:id/courses
func (h *CourseHandler) ListForBootcamp(c *gin.Context) {
	courses, err := h.Service.ListByBootcamp(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, courses)
}

// Get GET /courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, course)
}

// Create POST /bootcamps/:id/courses
func (h *CourseHandler) Create(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req createCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.Service.Create(c.Request.Context(), u, c.Param("id"), application.CourseInput{
		Title:                req.Title,
		Description:          req.Description,
		Weeks:                req.Weeks,
		Tuition:              *req.Tuition,
		MinimumSkill:         req.MinimumSkill,
		ScholarshipAvailable: req.ScholarshipAvailable,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusCreated, course)
}

// Update PUT /courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req updateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.Service.Update(c.Request.Context(), u, c.Param("id"), application.CoursePatch{
		Title:                req.Title,
		Description:          req.Description,
		Weeks:                req.Weeks,
		Tuition:              req.Tuition,
		MinimumSkill:         req.MinimumSkill,
		ScholarshipAvailable: req.ScholarshipAvailable,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, course)
}

// Delete DELETE /courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), u, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, struct{}{})
}
