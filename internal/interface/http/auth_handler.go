package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devcamper-api/internal/application"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/pkg/helpers"
	"github.com/oksasatya/devcamper-api/pkg/response"
)

type AuthHandler struct {
	Service   *application.AuthService
	Cookies   *helpers.CookieManager
	APIPrefix string
	Logger    *logrus.Logger
}

func NewAuthHandler(service *application.AuthService, cookies *helpers.CookieManager, apiPrefix string, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Service: service, Cookies: cookies, APIPrefix: apiPrefix, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"omitempty,signuprole"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateDetailsRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

// sendToken returns the token in the body and in the auth cookie.
func (h *AuthHandler) sendToken(c *gin.Context, status int, s *application.Session) {
	h.Cookies.SetToken(c, s.Token)
	response.Token(c, status, s.Token)
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Service.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.Role(req.Role),
	}, requestMeta(c, h.APIPrefix))
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.sendToken(c, http.StatusOK, s)
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Service.Login(c.Request.Context(), req.Email, req.Password, requestMeta(c, h.APIPrefix))
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.sendToken(c, http.StatusOK, s)
}

// Logout GET|POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	h.Service.Logout(c.Request.Context(), u, requestMeta(c, h.APIPrefix))
	h.Cookies.ClearToken(c)
	response.OK(c, http.StatusOK, struct{}{})
}

// Me GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	me, err := h.Service.Me(c.Request.Context(), u)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, me)
}

// UpdateDetails PUT /auth/updatedetails
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req updateDetailsRequest
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.Service.UpdateDetails(c.Request.Context(), u, req.Name, req.Email, requestMeta(c, h.APIPrefix))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, updated)
}

// UpdatePassword PUT /auth/updatepassword
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req updatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Service.UpdatePassword(c.Request.Context(), u, req.CurrentPassword, req.NewPassword, requestMeta(c, h.APIPrefix))
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.sendToken(c, http.StatusOK, s)
}

// ForgotPassword POST /auth/forgotpassword
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Service.ForgotPassword(c.Request.Context(), req.Email, requestMeta(c, h.APIPrefix)); err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, "Email sent")
}

// ResetPassword PUT /auth/resetpassword/:resettoken
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Service.ResetPassword(c.Request.Context(), c.Param("resettoken"), req.Password, requestMeta(c, h.APIPrefix))
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.sendToken(c, http.StatusOK, s)
}

// Activity GET /auth/activity?limit=
func (h *AuthHandler) Activity(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.Service.Activity(c.Request.Context(), u, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, entries)
}
