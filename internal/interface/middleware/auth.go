package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/pkg/helpers"
)

const CtxUserKey = "user"

// Authenticator resolves a token into its user. application.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// Protect requires a valid token, read from "Authorization: Bearer <token>" first and
// from the token cookie otherwise. The authenticated user is stored under CtxUserKey.
func Protect(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), tokenFromRequest(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(CtxUserKey, user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// Authorize admits only users holding one of roles. It must run after Protect.
func Authorize(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortWithError(c, apperror.Unauthorized("Not authorized to access this route"))
			return
		}
		if !user.HasRole(roles...) {
			abortWithError(c, apperror.Forbidden("User role %s is not authorized to access this route", user.Role))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by Protect, nil on public routes.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}

func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if t, err := c.Cookie(helpers.TokenCookie); err == nil && t != "none" {
		return t
	}
	return ""
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
