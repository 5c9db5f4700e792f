// Package chat orchestrates one conversation: routing user input between the
// onboarding dialogue and the AI responder, and keeping the message log and
// profile persisted.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ahmadreza-Avandi/mami-land/internal/ids"
	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/onboarding"
	"github.com/Ahmadreza-Avandi/mami-land/internal/responder"
)

// ErrorMessage is the recoverable, user-visible error state set when the
// responder path fails.
const ErrorMessage = "خطایی رخ داد، دوباره تلاش کنید."

// ProfileStore persists the user profile for one conversation.
type ProfileStore interface {
	LoadProfile(ctx context.Context) (models.UserProfile, error)
	SaveProfile(ctx context.Context, profile models.UserProfile) error
	ClearProfile(ctx context.Context) error
}

// MessageStore persists the ordered message log for one conversation.
type MessageStore interface {
	LoadMessages(ctx context.Context) ([]models.ChatMessage, error)
	AppendMessage(ctx context.Context, msg models.ChatMessage) error
	ClearMessages(ctx context.Context) error
}

// Controller drives a single conversation. Callers are expected to serialize
// sends (the UI disables input while loading); the controller itself is safe
// for concurrent use and discards responder replies that arrive after the
// conversation was cleared.
type Controller struct {
	profiles  ProfileStore
	messages  MessageStore
	responder responder.Responder
	log       zerolog.Logger

	mu      sync.Mutex
	epoch   uint64
	loading bool
	lastErr string
	profile models.UserProfile
	msgs    []models.ChatMessage
	step    onboarding.Step
}

func NewController(profiles ProfileStore, messages MessageStore, rsp responder.Responder, log zerolog.Logger) *Controller {
	return &Controller{
		profiles:  profiles,
		messages:  messages,
		responder: rsp,
		log:       log,
	}
}

// Resume loads persisted state and re-derives the onboarding step. Storage
// failures degrade to empty state rather than failing the caller. A fresh
// conversation starts with the single welcome message.
func (c *Controller) Resume(ctx context.Context) error {
	profile, err := c.profiles.LoadProfile(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("load profile failed, starting empty")
		profile = models.UserProfile{}
	}

	msgs, err := c.messages.LoadMessages(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("load messages failed, starting empty")
		msgs = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.profile = profile
	c.msgs = msgs
	c.step = onboarding.StepFor(profile)

	if len(c.msgs) == 0 && !profile.IsComplete {
		welcome := c.newMessage(onboarding.WelcomeMessage, models.RoleAssistant)
		c.msgs = append(c.msgs, welcome)
		if err := c.messages.AppendMessage(ctx, welcome); err != nil {
			c.log.Warn().Err(err).Msg("persist welcome message failed")
		}
	}
	return nil
}

// SendMessage appends the user message and produces the assistant reply,
// either synchronously through onboarding or via the responder. It returns
// the messages appended this turn. Empty input after trimming is a silent
// no-op. Responder failures never propagate; they set the recoverable error
// state and reply with the apology message.
func (c *Controller) SendMessage(ctx context.Context, text string) ([]models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	c.mu.Lock()
	userMsg := c.newMessage(text, models.RoleUser)
	c.msgs = append(c.msgs, userMsg)
	c.loading = true
	c.lastErr = ""
	epoch := c.epoch
	step := c.step
	profile := c.profile
	transcript := make([]models.ChatMessage, len(c.msgs))
	copy(transcript, c.msgs)
	c.mu.Unlock()

	if err := c.messages.AppendMessage(ctx, userMsg); err != nil {
		c.finish(epoch, "", err)
		return nil, err
	}

	if step < onboarding.StepComplete {
		return c.handleOnboarding(ctx, epoch, userMsg, profile, step, text)
	}

	reply, err := c.responder.Reply(ctx, transcript, profile)
	if err != nil {
		// The reply already degraded to the apology string. Keep the
		// turn but surface the recoverable error state.
		c.log.Warn().Err(err).Msg("responder failed")
	}
	assistantMsg, ok := c.finish(epoch, reply, err)
	if !ok {
		// Conversation was cleared while the request was in flight.
		return nil, nil
	}
	return []models.ChatMessage{userMsg, assistantMsg}, nil
}

func (c *Controller) handleOnboarding(ctx context.Context, epoch uint64, userMsg models.ChatMessage, profile models.UserProfile, step onboarding.Step, text string) ([]models.ChatMessage, error) {
	res := onboarding.Advance(profile, step, text)

	if res.Advanced {
		if err := c.profiles.SaveProfile(ctx, res.Profile); err != nil {
			c.finish(epoch, "", err)
			return nil, err
		}
	}

	c.mu.Lock()
	if c.epoch == epoch {
		c.profile = res.Profile
		c.step = res.Next
	}
	c.mu.Unlock()

	assistantMsg, ok := c.finish(epoch, res.Reply, nil)
	if !ok {
		return nil, nil
	}
	return []models.ChatMessage{userMsg, assistantMsg}, nil
}

// finish appends the assistant reply and clears the loading flag. Replies
// belonging to a cleared conversation are dropped.
func (c *Controller) finish(epoch uint64, reply string, cause error) (models.ChatMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return models.ChatMessage{}, false
	}

	c.loading = false
	if cause != nil {
		c.lastErr = ErrorMessage
	}
	if reply == "" {
		return models.ChatMessage{}, false
	}

	msg := c.newMessage(reply, models.RoleAssistant)
	c.msgs = append(c.msgs, msg)
	if err := c.messages.AppendMessage(context.Background(), msg); err != nil {
		c.log.Warn().Err(err).Msg("persist assistant message failed")
	}
	return msg, true
}

// ClearChat restarts the conversation: purges persisted chat and profile
// state, resets onboarding to the first step, and seeds the welcome message.
// Any in-flight responder reply for the old conversation becomes a no-op.
func (c *Controller) ClearChat(ctx context.Context) error {
	if err := c.messages.ClearMessages(ctx); err != nil {
		return err
	}
	if err := c.profiles.ClearProfile(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.loading = false
	c.lastErr = ""
	c.profile = models.UserProfile{}
	c.step = onboarding.StepName

	welcome := c.newMessage(onboarding.WelcomeMessage, models.RoleAssistant)
	c.msgs = []models.ChatMessage{welcome}
	if err := c.messages.AppendMessage(ctx, welcome); err != nil {
		c.log.Warn().Err(err).Msg("persist welcome message failed")
	}
	return nil
}

func (c *Controller) newMessage(content string, role models.MessageRole) models.ChatMessage {
	return models.ChatMessage{
		ID:        ids.New(),
		Content:   content,
		Role:      role,
		Timestamp: time.Now(),
	}
}

// Messages returns a copy of the current message log in display order.
func (c *Controller) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatMessage, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func (c *Controller) Profile() models.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

func (c *Controller) Step() onboarding.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the current recoverable error message, empty when none.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""
}
