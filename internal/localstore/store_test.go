package localstore_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmadreza-Avandi/mami-land/internal/ids"
	"github.com/Ahmadreza-Avandi/mami-land/internal/localstore"
	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
)

func intPtr(v int) *int { return &v }

func openStore(t *testing.T) (*localstore.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mamiland.json")
	s, err := localstore.Open(path, zerolog.Nop())
	require.NoError(t, err)
	return s, path
}

func TestProfileRoundTrip(t *testing.T) {
	s, path := openStore(t)
	ctx := context.Background()

	profile := models.UserProfile{
		Name:              "مریم",
		Age:               intPtr(28),
		PregnancyWeek:     intPtr(0),
		MedicalConditions: "ندارم",
		IsComplete:        true,
	}
	require.NoError(t, s.SaveProfile(ctx, profile))

	// Reopen from disk to exercise the serialized form.
	reopened, err := localstore.Open(path, zerolog.Nop())
	require.NoError(t, err)

	loaded, err := reopened.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile, loaded)
}

func TestMessagesRoundTripRehydratesTimestamps(t *testing.T) {
	s, path := openStore(t)
	ctx := context.Background()

	sent := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	msg := models.ChatMessage{ID: ids.New(), Content: "سلام", Role: models.RoleUser, Timestamp: sent}
	require.NoError(t, s.AppendMessage(ctx, msg))

	reopened, err := localstore.Open(path, zerolog.Nop())
	require.NoError(t, err)

	msgs, err := reopened.LoadMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "سلام", msgs[0].Content)
	assert.True(t, msgs[0].Timestamp.Equal(sent))
}

func TestCorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mamiland.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := localstore.Open(path, zerolog.Nop())
	require.NoError(t, err)

	msgs, err := s.LoadMessages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msgs)

	profile, err := s.LoadProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.UserProfile{}, profile)
}

func TestAccessCodeSingleUse(t *testing.T) {
	s, _ := openStore(t)

	ac, err := s.GenerateAccessCode(6, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, ac.Code, 6)

	assert.True(t, s.ConsumeAccessCode(ac.Code, "u1"))
	assert.False(t, s.ConsumeAccessCode(ac.Code, "u1"), "second consumption must fail")
}

func TestAccessCodeCaseInsensitive(t *testing.T) {
	s, _ := openStore(t)

	ac, err := s.GenerateAccessCode(6, 24*time.Hour)
	require.NoError(t, err)

	lower := ""
	for _, r := range ac.Code {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		lower += string(r)
	}

	assert.True(t, s.ConsumeAccessCode(lower, ""))

	codes := s.AccessCodes()
	require.Len(t, codes, 1)
	assert.True(t, codes[0].IsUsed)
	require.NotNil(t, codes[0].UsedAt)
}

func TestAccessCodeExpiry(t *testing.T) {
	s, _ := openStore(t)

	ac, err := s.GenerateAccessCode(6, -time.Minute)
	require.NoError(t, err)

	assert.False(t, s.ConsumeAccessCode(ac.Code, ""), "expired code must never validate")
}

func TestAccessCodeConcurrentConsumption(t *testing.T) {
	s, _ := openStore(t)

	ac, err := s.GenerateAccessCode(6, 24*time.Hour)
	require.NoError(t, err)

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.ConsumeAccessCode(ac.Code, "")
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for ok := range results {
		if ok {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent attempt may win")
}

func TestDeleteAccessCodeIdempotent(t *testing.T) {
	s, _ := openStore(t)

	ac, err := s.GenerateAccessCode(6, 24*time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccessCode(ac.Code))
	require.NoError(t, s.DeleteAccessCode(ac.Code))
	assert.Empty(t, s.AccessCodes())
}

func TestUsersAndAuthState(t *testing.T) {
	s, _ := openStore(t)

	user := models.User{Username: "maryam", Email: "maryam@example.com", CreatedAt: time.Now()}
	require.NoError(t, s.SaveUser(user))

	found, ok := s.FindUserByEmail("MARYAM@example.com")
	require.True(t, ok)
	assert.Equal(t, "maryam", found.Username)

	require.NoError(t, s.SaveAuthState(localstore.AuthState{IsAuthenticated: true, User: &found, AccessCode: "ABC123"}))
	state := s.AuthState()
	assert.True(t, state.IsAuthenticated)
	require.NotNil(t, state.User)

	require.NoError(t, s.ClearAuthState())
	assert.False(t, s.AuthState().IsAuthenticated)

	require.NoError(t, s.DeleteUser(found.ID))
	require.NoError(t, s.DeleteUser(found.ID))
	assert.Empty(t, s.Users())
}

func TestAdminAuthStateIndependentOfUserAuth(t *testing.T) {
	s, _ := openStore(t)

	require.NoError(t, s.SaveAuthState(localstore.AuthState{IsAuthenticated: true, AccessCode: "ABC123"}))
	require.NoError(t, s.SaveAdminAuthState(localstore.AdminAuthState{IsAuthenticated: true, Username: "admin"}))

	require.NoError(t, s.ClearAuthState())
	admin := s.AdminAuthState()
	assert.True(t, admin.IsAuthenticated)
	assert.Equal(t, "admin", admin.Username)

	require.NoError(t, s.ClearAdminAuthState())
	assert.False(t, s.AdminAuthState().IsAuthenticated)
}
