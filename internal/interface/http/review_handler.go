package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devcamper-api/internal/application"
	"github.com/oksasatya/devcamper-api/pkg/response"
)

type ReviewHandler struct {
	Service *application.ReviewService
}

func NewReviewHandler(service *application.ReviewService) *ReviewHandler {
	return &ReviewHandler{Service: service}
}

type createReviewRequest struct {
	Title  string `json:"title" binding:"required,max=100"`
	Text   string `json:"text" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=10"`
}

type updateReviewRequest struct {
	Title  *string `json:"title" binding:"omitempty,min=1,max=100"`
	Text   *string `json:"text" binding:"omitempty,min=1"`
	Rating *int    `json:"rating" binding:"omitempty,min=1,max=10"`
}

// List GET /reviews
func (h *ReviewHandler) List(c *gin.Context) {
	res, err := h.Service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Paged(c, res)
}

// ListForBootcamp GET /bootcamps/:id/reviews
func (h *ReviewHandler) ListForBootcamp(c *gin.Context) {
	reviews, err := h.Service.ListByBootcamp(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, reviews)
}

// Get GET /reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	review, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, review)
}

// Create POST /bootcamps/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req createReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.Service.Create(c.Request.Context(), u, c.Param("id"), application.ReviewInput{
		Title:  req.Title,
		Text:   req.Text,
		Rating: req.Rating,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusCreated, review)
}

// Update PUT /reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req updateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.Service.Update(c.Request.Context(), u, c.Param("id"), application.ReviewPatch{
		Title:  req.Title,
		Text:   req.Text,
		Rating: req.Rating,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, review)
}

// Delete DELETE /reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
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
