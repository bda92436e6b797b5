package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/narwhalmedia/wrongopinions/internal/user/domain"
	"github.com/narwhalmedia/wrongopinions/internal/user/service"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/middleware"
)

// HTTPHandler serves the account endpoints.
type HTTPHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewHTTPHandler creates a new account handler.
func NewHTTPHandler(userService *service.UserService, authService *service.AuthService) *HTTPHandler {
	return &HTTPHandler{
		userService: userService,
		authService: authService,
	}
}

// RegisterRoutes mounts register and login on public and me on protected.
func (h *HTTPHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/register", h.register)
	public.POST("/auth/login", h.login)
	protected.GET("/auth/me", h.me)
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /api/auth/login. Username may be an email.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public profile of an account.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// register handles POST /api/auth/register
func (h *HTTPHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.Wrap(errors.ErrorTypeBadRequest, "Invalid request body", err))
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// login handles POST /api/auth/login
func (h *HTTPHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.Wrap(errors.ErrorTypeBadRequest, "Invalid request body", err))
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// me handles GET /api/auth/me
func (h *HTTPHandler) me(c *gin.Context) {
	principal := middleware.Principal(c)

	user, err := h.userService.GetUser(c.Request.Context(), principal.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}
