package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ahmadreza-Avandi/mami-land/internal/config"
	"github.com/Ahmadreza-Avandi/mami-land/internal/ids"
	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/repository"
	"github.com/Ahmadreza-Avandi/mami-land/internal/security"
)

type AdminService struct {
	codes *repository.AccessCodeRepository
	users *repository.UserRepository
	logs  *repository.LogRepository
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewAdminService(
	codes *repository.AccessCodeRepository,
	users *repository.UserRepository,
	logs *repository.LogRepository,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		codes: codes,
		users: users,
		logs:  logs,
		cfg:   cfg,
		log:   log,
	}
}

// GenerateAccessCode creates a fresh single-use code. Outstanding codes stay
// valid.
func (s *AdminService) GenerateAccessCode(ctx context.Context, adminUsername string, ip string) (models.AccessCode, error) {
	code, err := security.GenerateAccessCode(s.cfg.AccessCodes.Length)
	if err != nil {
		return models.AccessCode{}, err
	}

	now := time.Now()
	ac := models.AccessCode{
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.AccessCodes.TTL),
	}
	if err := s.codes.Create(ctx, ac); err != nil {
		return models.AccessCode{}, err
	}

	s.audit(ctx, adminUsername, "access_code_generated", code, ip)
	return ac, nil
}

func (s *AdminService) AccessCodes(ctx context.Context, validOnly bool) ([]models.AccessCode, error) {
	if validOnly {
		return s.codes.ListValid(ctx)
	}
	return s.codes.List(ctx)
}

func (s *AdminService) DeleteAccessCode(ctx context.Context, adminUsername string, code string, ip string) error {
	if err := s.codes.Delete(ctx, code); err != nil {
		return err
	}
	s.audit(ctx, adminUsername, "access_code_deleted", code, ip)
	return nil
}

// ListUsers applies the case-insensitive substring filter on name, username
// and email in memory.
func (s *AdminService) ListUsers(ctx context.Context, search string) ([]repository.UserWithProfile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return users, nil
	}

	filtered := users[:0]
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Profile.Name), search) ||
			strings.Contains(strings.ToLower(u.User.Username), search) ||
			strings.Contains(strings.ToLower(u.User.Email), search) {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

// DeleteUser cascades to the user's profile, sessions and messages.
func (s *AdminService) DeleteUser(ctx context.Context, adminUsername string, userID string, ip string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.audit(ctx, adminUsername, "user_deleted", userID, ip)
	return nil
}

func (s *AdminService) Logs(ctx context.Context, limit int) ([]models.SystemLog, error) {
	return s.logs.List(ctx, limit)
}

// audit is best-effort: a failed log write never fails the admin action.
func (s *AdminService) audit(ctx context.Context, adminUsername string, action string, details string, ip string) {
	entry := models.SystemLog{
		ID:        ids.New(),
		AdminID:   &adminUsername,
		Action:    action,
		Details:   details,
		IPAddress: ip,
	}
	if err := s.logs.Record(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("audit log write failed")
	}
}
