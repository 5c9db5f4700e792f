// Package localstore is the non-networked persistence variant: a single JSON
// file holding the same keyed blobs the browser build kept in local storage.
// Corrupt or missing state always degrades to empty defaults.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ahmadreza-Avandi/mami-land/internal/ids"
	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/security"
)

const (
	keyChatHistory = "mamiland_chat_history"
	keyUserProfile = "mamiland_user_profile"
	keyAccessCodes = "mamiland_access_codes"
	keyAuthState   = "mamiland_auth_state"
	keyAdminAuth   = "mamiland_admin_auth_state"
	keyUsers       = "mamiland_users"
)

// AuthState mirrors the client-side auth blob: who is signed in and which
// access code admitted them.
type AuthState struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *models.User `json:"user"`
	AccessCode      string       `json:"accessCode"`
}

// Store is safe for concurrent use. Every mutation is written through to the
// backing file.
type Store struct {
	path string
	log  zerolog.Logger

	mu   sync.Mutex
	data map[string]json.RawMessage
}

func Open(path string, log zerolog.Logger) (*Store, error) {
	s := &Store{
		path: path,
		log:  log,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Fresh state.
	case err != nil:
		return nil, fmt.Errorf("read store: %w", err)
	default:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("corrupt local store, starting empty")
			s.data = make(map[string]json.RawMessage)
		}
	}

	return s, nil
}

// load decodes one key into out. Missing or corrupt blobs leave out untouched
// and report false. JSON timestamps re-hydrate into time values through the
// typed destination.
func (s *Store) load(key string, out any) bool {
	raw, ok := s.data[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("corrupt blob, treating as absent")
		return false
	}
	return true
}

func (s *Store) save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.data[key] = raw
	return s.flush()
}

func (s *Store) remove(keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return s.flush()
}

func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// --- chat.ProfileStore ---

func (s *Store) LoadProfile(context.Context) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p models.UserProfile
	s.load(keyUserProfile, &p)
	return p, nil
}

func (s *Store) SaveProfile(_ context.Context, p models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(keyUserProfile, p)
}

func (s *Store) ClearProfile(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(keyUserProfile)
}

// --- chat.MessageStore ---

func (s *Store) LoadMessages(context.Context) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var msgs []models.ChatMessage
	s.load(keyChatHistory, &msgs)
	return msgs, nil
}

func (s *Store) AppendMessage(_ context.Context, msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var msgs []models.ChatMessage
	s.load(keyChatHistory, &msgs)
	msgs = append(msgs, msg)
	return s.save(keyChatHistory, msgs)
}

func (s *Store) ClearMessages(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(keyChatHistory)
}

// --- access codes ---

func (s *Store) GenerateAccessCode(length int, ttl time.Duration) (models.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := security.GenerateAccessCode(length)
	if err != nil {
		return models.AccessCode{}, err
	}

	now := time.Now()
	ac := models.AccessCode{
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	var codes []models.AccessCode
	s.load(keyAccessCodes, &codes)
	codes = append(codes, ac)
	if err := s.save(keyAccessCodes, codes); err != nil {
		return models.AccessCode{}, err
	}
	return ac, nil
}

// ConsumeAccessCode is the mutex-guarded check-and-set: the code is valid
// only while unused and unexpired, and two concurrent attempts cannot both
// succeed.
func (s *Store) ConsumeAccessCode(code string, usedBy string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	code = strings.ToUpper(strings.TrimSpace(code))

	var codes []models.AccessCode
	s.load(keyAccessCodes, &codes)

	now := time.Now()
	for i := range codes {
		if codes[i].Code != code || !codes[i].Consumable(now) {
			continue
		}
		codes[i].IsUsed = true
		codes[i].UsedAt = &now
		if usedBy != "" {
			codes[i].UsedBy = &usedBy
		}
		if err := s.save(keyAccessCodes, codes); err != nil {
			s.log.Warn().Err(err).Msg("persist consumed code failed")
		}
		return true
	}
	return false
}

func (s *Store) AccessCodes() []models.AccessCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	var codes []models.AccessCode
	s.load(keyAccessCodes, &codes)
	return codes
}

// DeleteAccessCode is idempotent: deleting an absent code is a no-op.
func (s *Store) DeleteAccessCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var codes []models.AccessCode
	s.load(keyAccessCodes, &codes)

	kept := codes[:0]
	for _, c := range codes {
		if c.Code != code {
			kept = append(kept, c)
		}
	}
	return s.save(keyAccessCodes, kept)
}

// --- users / auth state ---

func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	s.load(keyUsers, &users)
	return users
}

func (s *Store) FindUserByEmail(email string) (models.User, bool) {
	for _, u := range s.Users() {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *Store) SaveUser(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	s.load(keyUsers, &users)

	if user.ID == "" {
		user.ID = ids.New()
	}
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = user
			return s.save(keyUsers, users)
		}
	}
	users = append(users, user)
	return s.save(keyUsers, users)
}

// DeleteUser is idempotent on missing targets.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	s.load(keyUsers, &users)

	kept := users[:0]
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	return s.save(keyUsers, kept)
}

func (s *Store) AuthState() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state AuthState
	s.load(keyAuthState, &state)
	return state
}

func (s *Store) SaveAuthState(state AuthState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(keyAuthState, state)
}

// ClearAuthState is the client-side logout: a pure credential purge.
func (s *Store) ClearAuthState() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(keyAuthState)
}

// AdminAuthState is stored under its own key, separate from the user's
// auth blob: the two identities log in and out independently.
type AdminAuthState struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Username        string `json:"username"`
}

func (s *Store) AdminAuthState() AdminAuthState {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state AdminAuthState
	s.load(keyAdminAuth, &state)
	return state
}

func (s *Store) SaveAdminAuthState(state AdminAuthState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(keyAdminAuth, state)
}

func (s *Store) ClearAdminAuthState() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(keyAdminAuth)
}
