package responder_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmadreza-Avandi/mami-land/internal/config"
	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/responder"
)

func intPtr(v int) *int { return &v }

func completeProfile(weekNum int) models.UserProfile {
	return models.UserProfile{
		Name:              "مریم",
		Age:               intPtr(28),
		PregnancyWeek:     intPtr(weekNum),
		MedicalConditions: "ندارم",
		IsComplete:        true,
	}
}

func userMsg(content string) models.ChatMessage {
	return models.ChatMessage{ID: "m1", Content: content, Role: models.RoleUser, Timestamp: time.Now()}
}

func TestBuildPrompt_IncludesProfileWhenComplete(t *testing.T) {
	messages := []models.ChatMessage{
		userMsg("سلام"),
		{ID: "m2", Content: "سلام! چطور می‌تونم کمک کنم؟", Role: models.RoleAssistant, Timestamp: time.Now()},
	}

	prompt := responder.BuildPrompt(messages, completeProfile(12))

	assert.Contains(t, prompt, "مریم")
	assert.Contains(t, prompt, "User: سلام")
	assert.Contains(t, prompt, "Assistant: سلام! چطور می‌تونم کمک کنم؟")
}

func TestBuildPrompt_OmitsProfileWhenIncomplete(t *testing.T) {
	prompt := responder.BuildPrompt([]models.ChatMessage{userMsg("سلام")}, models.UserProfile{Name: "مریم"})

	assert.NotContains(t, prompt, "اطلاعات کاربر")
	assert.Contains(t, prompt, "User: سلام")
}

func TestProxyResponder_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.URL.Query().Get("text"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"answer": "  حتماً آب کافی بنوشید.  "})
	}))
	defer server.Close()

	r := responder.NewProxyResponder(config.ResponderConfig{ProxyBaseURL: server.URL, Timeout: 5 * time.Second}, zerolog.Nop())

	reply, err := r.Reply(context.Background(), []models.ChatMessage{userMsg("تغذیه")}, completeProfile(20))
	require.NoError(t, err)
	assert.Equal(t, "حتماً آب کافی بنوشید.", reply)
}

func TestProxyResponder_Non2xxReturnsApology(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	r := responder.NewProxyResponder(config.ResponderConfig{ProxyBaseURL: server.URL}, zerolog.Nop())

	reply, err := r.Reply(context.Background(), []models.ChatMessage{userMsg("سلام")}, completeProfile(20))
	assert.Error(t, err)
	assert.Equal(t, responder.ApologyMessage, reply)
}

func TestProxyResponder_MalformedBodyReturnsApology(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	r := responder.NewProxyResponder(config.ResponderConfig{ProxyBaseURL: server.URL}, zerolog.Nop())

	reply, err := r.Reply(context.Background(), []models.ChatMessage{userMsg("سلام")}, completeProfile(20))
	assert.Error(t, err)
	assert.Equal(t, responder.ApologyMessage, reply)
}

func TestProxyResponder_UnreachableReturnsApology(t *testing.T) {
	r := responder.NewProxyResponder(config.ResponderConfig{ProxyBaseURL: "http://127.0.0.1:1", Timeout: time.Second}, zerolog.Nop())

	reply, err := r.Reply(context.Background(), []models.ChatMessage{userMsg("سلام")}, completeProfile(20))
	assert.Error(t, err)
	assert.Equal(t, responder.ApologyMessage, reply)
}

func TestLocalResponder_KeywordSelection(t *testing.T) {
	r := responder.NewLocalResponder()
	profile := completeProfile(8)

	reply, err := r.Reply(context.Background(), []models.ChatMessage{userMsg("در مورد بارداری سوال دارم")}, profile)
	require.NoError(t, err)
	assert.Contains(t, reply, "سه‌ماهه اول")

	reply, err = r.Reply(context.Background(), []models.ChatMessage{userMsg("مراقبت از نوزاد چطوریه؟")}, profile)
	require.NoError(t, err)
	assert.Contains(t, reply, "نوزاد")
}

func TestLocalResponder_TrimesterThresholds(t *testing.T) {
	r := responder.NewLocalResponder()
	msg := []models.ChatMessage{userMsg("بارداری")}

	reply, err := r.Reply(context.Background(), msg, completeProfile(20))
	require.NoError(t, err)
	assert.Contains(t, reply, "سه‌ماهه دوم")

	reply, err = r.Reply(context.Background(), msg, completeProfile(30))
	require.NoError(t, err)
	assert.Contains(t, reply, "سه‌ماهه سوم")
}

func TestLocalResponder_NotPregnant(t *testing.T) {
	r := responder.NewLocalResponder()

	reply, err := r.Reply(context.Background(), []models.ChatMessage{userMsg("بارداری")}, completeProfile(0))
	require.NoError(t, err)
	assert.Contains(t, reply, "قصد بارداری")
}

func TestLocalResponder_NoKeywordFallsBackToGeneric(t *testing.T) {
	r := responder.NewLocalResponder()
	profile := completeProfile(12)

	reply, err := r.Reply(context.Background(), []models.ChatMessage{userMsg("هوا چطوره؟")}, profile)
	require.NoError(t, err)
	assert.Contains(t, reply, profile.Name)
}
