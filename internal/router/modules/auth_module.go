package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/devcamper-api/internal/interface/http"
	"github.com/oksasatya/devcamper-api/internal/interface/middleware"
)

// AuthModule wires /auth routes.
// Public: register, login, forgotpassword, resetpassword/:resettoken
// Protected: logout, me, updatedetails, updatepassword, activity
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guards  Guards
}

func NewAuthModule(h *handlers.AuthHandler, g Guards) *AuthModule {
	return &AuthModule{Handler: h, Guards: g}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := m.Guards
	loginLimiter := g.limit(10, time.Minute, middleware.KeyByIP())
	registerLimiter := g.limit(5, time.Minute, middleware.KeyByIP())
	forgotLimiter := g.limit(5, time.Minute, middleware.KeyByIPAndPath())
	resetLimiter := g.limit(30, time.Minute, middleware.KeyByIPAndPath())

	auth := rg.Group("/auth")
	auth.POST("/register", registerLimiter, m.Handler.Register)
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.POST("/forgotpassword", forgotLimiter, m.Handler.ForgotPassword)
	auth.PUT("/resetpassword/:resettoken", resetLimiter, m.Handler.ResetPassword)

	protected := auth.Group("")
	protected.Use(g.protect())
	{
		protected.GET("/logout", m.Handler.Logout)
		protected.POST("/logout", m.Handler.Logout)
		protected.GET("/me", m.Handler.Me)
		protected.PUT("/updatedetails", m.Handler.UpdateDetails)
		protected.PUT("/updatepassword", g.limit(10, time.Minute, middleware.KeyByUserID()), m.Handler.UpdatePassword)
		protected.GET("/activity", m.Handler.Activity)
	}
}
