package chat_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmadreza-Avandi/mami-land/internal/chat"
	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/onboarding"
	"github.com/Ahmadreza-Avandi/mami-land/internal/responder"
)

type memStore struct {
	mu      sync.Mutex
	profile models.UserProfile
	msgs    []models.ChatMessage
}

func (s *memStore) LoadProfile(context.Context) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *memStore) SaveProfile(_ context.Context, p models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return nil
}

func (s *memStore) ClearProfile(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = models.UserProfile{}
	return nil
}

func (s *memStore) LoadMessages(context.Context) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.msgs...), nil
}

func (s *memStore) AppendMessage(_ context.Context, msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *memStore) ClearMessages(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = nil
	return nil
}

// scriptedResponder blocks until released so tests can interleave ClearChat
// with an in-flight reply.
type scriptedResponder struct {
	reply   string
	err     error
	release chan struct{}
}

func (r *scriptedResponder) Reply(ctx context.Context, _ []models.ChatMessage, _ models.UserProfile) (string, error) {
	if r.release != nil {
		<-r.release
	}
	if r.err != nil {
		return responder.ApologyMessage, r.err
	}
	return r.reply, nil
}

func newController(t *testing.T, rsp responder.Responder) (*chat.Controller, *memStore) {
	t.Helper()
	store := &memStore{}
	c := chat.NewController(store, store, rsp, zerolog.Nop())
	require.NoError(t, c.Resume(context.Background()))
	return c, store
}

func TestResume_SeedsWelcomeMessage(t *testing.T) {
	c, _ := newController(t, &scriptedResponder{reply: "باشه"})

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleAssistant, msgs[0].Role)
	assert.Equal(t, onboarding.WelcomeMessage, msgs[0].Content)
	assert.Equal(t, onboarding.StepName, c.Step())
}

func TestSendMessage_EmptyInputIsNoOp(t *testing.T) {
	c, _ := newController(t, &scriptedResponder{reply: "باشه"})

	appended, err := c.SendMessage(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, appended)
	assert.Len(t, c.Messages(), 1)
}

func TestSendMessage_OnboardingFlowAndOrdering(t *testing.T) {
	c, store := newController(t, &scriptedResponder{reply: "پاسخ هوش مصنوعی"})
	ctx := context.Background()

	inputs := []string{"مریم", "28", "12", "ندارم"}
	for _, in := range inputs {
		appended, err := c.SendMessage(ctx, in)
		require.NoError(t, err)
		require.Len(t, appended, 2)
		assert.Equal(t, models.RoleUser, appended[0].Role)
		assert.Equal(t, models.RoleAssistant, appended[1].Role)
	}

	assert.Equal(t, onboarding.StepComplete, c.Step())
	assert.True(t, c.Profile().IsComplete)

	// welcome + 2 per turn, timestamps non-decreasing.
	msgs := c.Messages()
	require.Len(t, msgs, 1+2*len(inputs))
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].Timestamp.Before(msgs[i-1].Timestamp))
	}

	// Round-trip through the store.
	stored, err := store.LoadMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, msgs, stored)
}

func TestSendMessage_RejectedInputKeepsStepAndProfile(t *testing.T) {
	c, _ := newController(t, &scriptedResponder{reply: "پاسخ"})
	ctx := context.Background()

	_, err := c.SendMessage(ctx, "مریم")
	require.NoError(t, err)

	appended, err := c.SendMessage(ctx, "200")
	require.NoError(t, err)
	require.Len(t, appended, 2)
	assert.Equal(t, onboarding.InvalidAgeMessage, appended[1].Content)
	assert.Equal(t, onboarding.StepAge, c.Step())
	assert.Nil(t, c.Profile().Age)
}

func TestSendMessage_RoutesToResponderWhenComplete(t *testing.T) {
	c, _ := newController(t, &scriptedResponder{reply: "جواب پزشکی"})
	ctx := context.Background()

	for _, in := range []string{"مریم", "28", "0", "ندارم"} {
		_, err := c.SendMessage(ctx, in)
		require.NoError(t, err)
	}

	appended, err := c.SendMessage(ctx, "در مورد تغذیه بگو")
	require.NoError(t, err)
	require.Len(t, appended, 2)
	assert.Equal(t, "جواب پزشکی", appended[1].Content)
	assert.False(t, c.Loading())
	assert.Empty(t, c.LastError())
}

func TestSendMessage_ResponderFailureIsRecoverable(t *testing.T) {
	rsp := &scriptedResponder{err: errors.New("proxy down")}
	c, _ := newController(t, rsp)
	ctx := context.Background()

	for _, in := range []string{"مریم", "28", "12", "ندارم"} {
		_, err := c.SendMessage(ctx, in)
		require.NoError(t, err)
	}

	appended, err := c.SendMessage(ctx, "سوال دارم")
	require.NoError(t, err)
	require.Len(t, appended, 2)
	assert.Equal(t, responder.ApologyMessage, appended[1].Content)
	assert.Equal(t, chat.ErrorMessage, c.LastError())
	assert.False(t, c.Loading())

	c.ClearError()
	assert.Empty(t, c.LastError())
}

func TestClearChat_ResetsEverything(t *testing.T) {
	c, store := newController(t, &scriptedResponder{reply: "جواب"})
	ctx := context.Background()

	for _, in := range []string{"مریم", "28", "12", "ندارم"} {
		_, err := c.SendMessage(ctx, in)
		require.NoError(t, err)
	}

	require.NoError(t, c.ClearChat(ctx))

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, onboarding.WelcomeMessage, msgs[0].Content)
	assert.Equal(t, onboarding.StepName, c.Step())
	assert.Equal(t, models.UserProfile{}, c.Profile())

	stored, err := store.LoadMessages(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestClearChat_DiscardsLateResponderReply(t *testing.T) {
	rsp := &scriptedResponder{reply: "جواب دیرهنگام", release: make(chan struct{})}
	c, _ := newController(t, rsp)
	ctx := context.Background()

	rsp.release = nil
	for _, in := range []string{"مریم", "28", "12", "ندارم"} {
		_, err := c.SendMessage(ctx, in)
		require.NoError(t, err)
	}
	rsp.release = make(chan struct{})

	done := make(chan []models.ChatMessage, 1)
	go func() {
		appended, _ := c.SendMessage(ctx, "سوال")
		done <- appended
	}()

	// Wait for the send to reach the responder, then clear underneath it.
	for {
		msgs := c.Messages()
		if msgs[len(msgs)-1].Role == models.RoleUser {
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, c.ClearChat(ctx))
	close(rsp.release)

	appended := <-done
	assert.Empty(t, appended)

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, onboarding.WelcomeMessage, msgs[0].Content)
}
