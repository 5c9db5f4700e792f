package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/repository"
)

type sessionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toSessionResponse(s models.ChatSession) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type messageResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

func toMessageResponses(msgs []models.ChatMessage) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse{
			ID:        m.ID,
			Content:   m.Content,
			Role:      string(m.Role),
			Timestamp: m.Timestamp,
		})
	}
	return out
}

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("current_user")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_user"})
		return models.User{}, false
	}
	return user, true
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	sessions, err := h.chatService.ListSessions(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("list sessions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

type createSessionRequest struct {
	Title string `json:"title"`
}

func (h HandlerSet) CreateSession(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createSessionRequest
	_ = c.ShouldBindJSON(&req)

	session, err := h.chatService.CreateSession(c.Request.Context(), user.ID, req.Title)
	if err != nil {
		h.log.Error().Err(err).Msg("create session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": toSessionResponse(session)})
}

func (h HandlerSet) ListMessages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	msgs, err := h.chatService.Messages(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("list messages failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": toMessageResponses(msgs)})
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h HandlerSet) SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "متن پیام الزامی است"})
		return
	}

	appended, err := h.chatService.SendMessage(c.Request.Context(), user.ID, c.Param("id"), req.Content)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("send message failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": toMessageResponses(appended)})
}

func (h HandlerSet) ResetChat(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	session, err := h.chatService.ResetChat(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("reset chat failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": toSessionResponse(session)})
}

func (h HandlerSet) DeleteSession(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.chatService.DeleteSession(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("delete session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "خطای سرور"})
		return
	}

	c.Status(http.StatusNoContent)
}
