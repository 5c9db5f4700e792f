package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Ahmadreza-Avandi/mami-land/internal/chat"
	"github.com/Ahmadreza-Avandi/mami-land/internal/ids"
	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/repository"
	"github.com/Ahmadreza-Avandi/mami-land/internal/responder"
)

const defaultSessionTitle = "چت جدید"

// ChatService is the server-side face of the conversation controller: each
// request binds a controller to one user's session through store adapters
// over the repositories.
type ChatService struct {
	sessions  *repository.ChatRepository
	profiles  *repository.ProfileRepository
	responder responder.Responder
	log       zerolog.Logger
}

func NewChatService(
	sessions *repository.ChatRepository,
	profiles *repository.ProfileRepository,
	rsp responder.Responder,
	log zerolog.Logger,
) *ChatService {
	return &ChatService{
		sessions:  sessions,
		profiles:  profiles,
		responder: rsp,
		log:       log,
	}
}

func (s *ChatService) CreateSession(ctx context.Context, userID string, title string) (models.ChatSession, error) {
	if title == "" {
		title = defaultSessionTitle
	}
	session := models.ChatSession{
		ID:     ids.New(),
		UserID: userID,
		Title:  title,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return models.ChatSession{}, err
	}

	// Resuming a fresh session seeds the welcome message for users still
	// in onboarding.
	if _, err := s.controllerFor(ctx, userID, session.ID); err != nil {
		return models.ChatSession{}, err
	}

	return s.sessions.GetSession(ctx, session.ID, userID)
}

func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	return s.sessions.ListSessions(ctx, userID)
}

func (s *ChatService) Messages(ctx context.Context, userID string, sessionID string) ([]models.ChatMessage, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.sessions.ListMessages(ctx, sessionID)
}

// SendMessage runs one turn of the conversation and returns the messages
// appended (the user message plus the assistant reply).
func (s *ChatService) SendMessage(ctx context.Context, userID string, sessionID string, text string) ([]models.ChatMessage, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	ctrl, err := s.controllerFor(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return ctrl.SendMessage(ctx, text)
}

// ResetChat is the server-side clearChat: the old session is soft-deleted
// (a late responder reply lands on the inactive session and is discarded),
// the profile is emptied, and a fresh session starts over from the welcome
// message.
func (s *ChatService) ResetChat(ctx context.Context, userID string, sessionID string) (models.ChatSession, error) {
	if err := s.sessions.DeactivateSession(ctx, sessionID, userID); err != nil {
		return models.ChatSession{}, err
	}
	if err := s.profiles.Clear(ctx, userID); err != nil {
		return models.ChatSession{}, err
	}
	return s.CreateSession(ctx, userID, "")
}

// DeleteSession soft-deletes without touching the profile.
func (s *ChatService) DeleteSession(ctx context.Context, userID string, sessionID string) error {
	return s.sessions.DeactivateSession(ctx, sessionID, userID)
}

// Profile exposes the user's onboarding record.
func (s *ChatService) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	return s.profiles.Get(ctx, userID)
}

func (s *ChatService) controllerFor(ctx context.Context, userID string, sessionID string) (*chat.Controller, error) {
	adapter := &sessionStore{
		sessions:  s.sessions,
		profiles:  s.profiles,
		userID:    userID,
		sessionID: sessionID,
	}
	ctrl := chat.NewController(adapter, adapter, s.responder, s.log)
	if err := ctrl.Resume(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// sessionStore binds the controller's store interfaces to one user and one
// session over the repositories.
type sessionStore struct {
	sessions  *repository.ChatRepository
	profiles  *repository.ProfileRepository
	userID    string
	sessionID string
}

func (a *sessionStore) LoadProfile(ctx context.Context) (models.UserProfile, error) {
	return a.profiles.Get(ctx, a.userID)
}

func (a *sessionStore) SaveProfile(ctx context.Context, p models.UserProfile) error {
	return a.profiles.Save(ctx, a.userID, p)
}

func (a *sessionStore) ClearProfile(ctx context.Context) error {
	return a.profiles.Clear(ctx, a.userID)
}

func (a *sessionStore) LoadMessages(ctx context.Context) ([]models.ChatMessage, error) {
	return a.sessions.ListMessages(ctx, a.sessionID)
}

func (a *sessionStore) AppendMessage(ctx context.Context, msg models.ChatMessage) error {
	msg.SessionID = a.sessionID
	return a.sessions.AppendMessage(ctx, msg)
}

func (a *sessionStore) ClearMessages(ctx context.Context) error {
	// Clearing happens by deactivating the session, never by deleting rows.
	return a.sessions.DeactivateSession(ctx, a.sessionID, a.userID)
}
