package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/service"
)

type userResponse struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	JoinDate time.Time `json:"joinDate"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		JoinDate: u.CreatedAt,
	}
}

type accessCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h HandlerSet) ValidateAccessCode(c *gin.Context) {
	var req accessCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "کد دسترسی الزامی است"})
		return
	}

	if err := h.authService.ValidateAccessCode(c.Request.Context(), req.Code, c.ClientIP()); err != nil {
		if errors.Is(err, service.ErrInvalidAccessCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("access code validation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "نام کاربری، ایمیل و رمز عبور الزامی هستند"})
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken),
			errors.Is(err, service.ErrEmailTaken),
			errors.Is(err, service.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Error().Err(err).Msg("register failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  toUserResponse(result.User),
		"token": result.Token,
	})
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "نام کاربری و رمز عبور الزامی هستند"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	profile, err := h.chatService.Profile(c.Request.Context(), result.User.ID)
	if err != nil {
		h.log.Warn().Err(err).Msg("load profile on login failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    toUserResponse(result.User),
		"profile": profile,
		"token":   result.Token,
	})
}

func (h HandlerSet) Me(c *gin.Context) {
	userVal, exists := c.Get("current_user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, ok := userVal.(models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_user"})
		return
	}

	profile, err := h.chatService.Profile(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Warn().Err(err).Msg("load profile failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    toUserResponse(user),
		"profile": profile,
	})
}
