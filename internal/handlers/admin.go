package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ahmadreza-Avandi/mami-land/internal/middleware"
	"github.com/Ahmadreza-Avandi/mami-land/internal/repository"
	"github.com/Ahmadreza-Avandi/mami-land/internal/service"
)

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLogin issues the 7-day admin token both in the response body and as
// an http-only, same-site-strict cookie.
func (h HandlerSet) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "نام کاربری و رمز عبور الزامی هستند"})
		return
	}

	admin, token, err := h.authService.AdminLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "نام کاربری یا رمز عبور نامعتبر است"})
			return
		}
		h.log.Error().Err(err).Msg("admin login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		middleware.AdminCookieName,
		token,
		int(h.cfg.Security.AdminTokenTTL/time.Second),
		"/",
		"",
		h.cfg.Environment == "production",
		true,
	)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"admin": gin.H{
			"username": admin.Username,
			"isAdmin":  true,
		},
		"token": token,
	})
}

func (h HandlerSet) GenerateAccessCode(c *gin.Context) {
	code, err := h.adminService.GenerateAccessCode(c.Request.Context(), c.GetString("admin_username"), c.ClientIP())
	if err != nil {
		h.log.Error().Err(err).Msg("generate access code failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}

func (h HandlerSet) ListAccessCodes(c *gin.Context) {
	validOnly := c.Query("valid") == "true"

	codes, err := h.adminService.AccessCodes(c.Request.Context(), validOnly)
	if err != nil {
		h.log.Error().Err(err).Msg("list access codes failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

func (h HandlerSet) DeleteAccessCode(c *gin.Context) {
	err := h.adminService.DeleteAccessCode(c.Request.Context(), c.GetString("admin_username"), c.Param("code"), c.ClientIP())
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "code_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("delete access code failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, gin.H{
			"id":       u.User.ID,
			"username": u.User.Username,
			"email":    u.User.Email,
			"joinDate": u.User.CreatedAt,
			"profile":  u.Profile,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": items})
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	err := h.adminService.DeleteUser(c.Request.Context(), c.GetString("admin_username"), c.Param("id"), c.ClientIP())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("delete user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ListLogs(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := h.adminService.Logs(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("list logs failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	items := make([]gin.H, 0, len(logs))
	for _, entry := range logs {
		items = append(items, gin.H{
			"id":        entry.ID,
			"userId":    entry.UserID,
			"adminId":   entry.AdminID,
			"action":    entry.Action,
			"details":   entry.Details,
			"ipAddress": entry.IPAddress,
			"createdAt": entry.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"logs": items})
}
