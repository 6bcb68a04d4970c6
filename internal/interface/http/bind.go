package handlers

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/oksasatya/devcamper-api/internal/application"
	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/interface/middleware"
	"github.com/oksasatya/devcamper-api/pkg/validation"
)

// bindJSON decodes and validates the body into dst. An empty body is validated as an empty object.
// On failure the validation error is attached to the context and false is returned.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(dst)
	}
	if err != nil {
		_ = c.Error(validation.ToAppError(err))
		return false
	}
	return true
}

// actor returns the authenticated user. Routes using it are always behind Protect.
func actor(c *gin.Context) (*entity.User, bool) {
	u := middleware.CurrentUser(c)
	if u == nil {
		_ = c.Error(apperror.Unauthorized("Not authorized to access this route"))
		return nil, false
	}
	return u, true
}

func requestMeta(c *gin.Context, apiPrefix string) application.RequestMeta {
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return application.RequestMeta{
		IP:        middleware.ClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		APIBase:   scheme + "://" + c.Request.Host + apiPrefix,
	}
}
