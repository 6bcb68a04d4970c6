package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devcamper-api/internal/application"
	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/pkg/response"
)

// multipartOverhead leaves room for boundaries and part headers on top of MAX_FILE_UPLOAD.
const multipartOverhead = 64 << 10

type BootcampHandler struct {
	Service *application.BootcampService
}

func NewBootcampHandler(service *application.BootcampService) *BootcampHandler {
	return &BootcampHandler{Service: service}
}

type createBootcampRequest struct {
	Name          string   `json:"name" binding:"required,max=50"`
	Description   string   `json:"description" binding:"required,max=500"`
	Website       string   `json:"website" binding:"omitempty,http_url"`
	Phone         string   `json:"phone" binding:"omitempty,max=20"`
	Email         string   `json:"email" binding:"omitempty,email"`
	Address       string   `json:"address" binding:"required"`
	Careers       []string `json:"careers" binding:"required,min=1,dive,career"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi"`
}

type updateBootcampRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=1,max=50"`
	Description   *string  `json:"description" binding:"omitempty,min=1,max=500"`
	Website       *string  `json:"website" binding:"omitempty,http_url"`
	Phone         *string  `json:"phone" binding:"omitempty,max=20"`
	Email         *string  `json:"email" binding:"omitempty,email"`
	Address       *string  `json:"address" binding:"omitempty,min=1"`
	Careers       []string `json:"careers" binding:"omitempty,min=1,dive,career"`
	Housing       *bool    `json:"housing"`
	JobAssistance *bool    `json:"jobAssistance"`
	JobGuarantee  *bool    `json:"jobGuarantee"`
	AcceptGi      *bool    `json:"acceptGi"`
}

// List GET /bootcamps
func (h *BootcampHandler) List(c *gin.Context) {
	res, err := h.Service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Paged(c, res)
}

// Search GET /bootcamps/search?q=&size=
func (h *BootcampHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Service.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, hits)
}

// WithinRadius GET /bootcamps/radius/:zipcode/:distance
func (h *BootcampHandler) WithinRadius(c *gin.Context) {
	bootcamps, err := h.Service.WithinRadius(c.Request.Context(), c.Param("zipcode"), c.Param("distance"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, bootcamps)
}

// Get GET /bootcamps/:id
func (h *BootcampHandler) Get(c *gin.Context) {
	b, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, b)
}

// Create POST /bootcamps
func (h *BootcampHandler) Create(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req createBootcampRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.Create(c.Request.Context(), u, application.BootcampInput{
		Name:          req.Name,
		Description:   req.Description,
		Website:       req.Website,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Careers:       req.Careers,
		Housing:       req.Housing,
		JobAssistance: req.JobAssistance,
		JobGuarantee:  req.JobGuarantee,
		AcceptGi:      req.AcceptGi,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusCreated, b)
}

// Update PUT /bootcamps/:id
func (h *BootcampHandler) Update(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req updateBootcampRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.Update(c.Request.Context(), u, c.Param("id"), application.BootcampPatch{
		Name:          req.Name,
		Description:   req.Description,
		Website:       req.Website,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Careers:       req.Careers,
		Housing:       req.Housing,
		JobAssistance: req.JobAssistance,
		JobGuarantee:  req.JobGuarantee,
		AcceptGi:      req.AcceptGi,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, b)
}

// Delete DELETE /bootcamps/:id
func (h *BootcampHandler) Delete(c *gin.Context) {
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

// UploadPhoto PUT /bootcamps/:id/photo (multipart field "file")
func (h *BootcampHandler) UploadPhoto(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}

	// Cap the body before multipart parsing spools it to memory or disk.
	if maxUpload := h.Service.MaxUpload; maxUpload > 0 {
		limit := maxUpload + multipartOverhead
		if c.Request.ContentLength > limit {
			_ = c.Error(apperror.BadRequest("Please upload an image less than %d", maxUpload))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	var upload *application.PhotoUpload
	fh, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		f, oerr := fh.Open()
		if oerr != nil {
			_ = c.Error(oerr)
			return
		}
		defer func() { _ = f.Close() }()
		upload = &application.PhotoUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case errors.As(err, &tooLarge):
		_ = c.Error(apperror.BadRequest("Please upload an image less than %d", h.Service.MaxUpload))
		return
	default:
		_ = c.Error(err)
		return
	}

	stored, err := h.Service.UploadPhoto(c.Request.Context(), u, c.Param("id"), upload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, stored)
}
