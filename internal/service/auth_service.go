package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Ahmadreza-Avandi/mami-land/internal/config"
	"github.com/Ahmadreza-Avandi/mami-land/internal/ids"
	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/repository"
	"github.com/Ahmadreza-Avandi/mami-land/internal/security"
)

// User-facing authentication errors. The duplicate-identifier messages are
// deliberately distinct from the generic credential failure.
var (
	ErrInvalidCredentials = errors.New("نام کاربری یا رمز عبور نامعتبر است")
	ErrUsernameTaken      = errors.New("این نام کاربری قبلاً ثبت شده است")
	ErrEmailTaken         = errors.New("این ایمیل قبلاً ثبت شده است")
	ErrPasswordTooShort   = errors.New("رمز عبور باید حداقل ۶ کاراکتر باشد")
	ErrInvalidAccessCode  = errors.New("کد دسترسی نامعتبر یا منقضی شده است")
)

// UserStore is the slice of the user repository authentication needs.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByLogin(ctx context.Context, login string) (models.User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (usernameTaken bool, emailTaken bool, err error)
}

// AdminStore resolves and bootstraps admin identities.
type AdminStore interface {
	FindActiveByUsername(ctx context.Context, username string) (models.Admin, error)
	Upsert(ctx context.Context, admin models.Admin) error
}

// CodeConsumer atomically consumes a single-use access code.
type CodeConsumer interface {
	Consume(ctx context.Context, code string, usedBy string) (bool, error)
}

type AuthService struct {
	users  UserStore
	admins AdminStore
	codes  CodeConsumer
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewAuthService(
	users UserStore,
	admins AdminStore,
	codes CodeConsumer,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		admins: admins,
		codes:  codes,
		cfg:    cfg,
		log:    log,
	}
}

// ValidateAccessCode consumes a code: case-insensitive match, single use,
// atomic. Two concurrent attempts against the same code cannot both succeed.
func (s *AuthService) ValidateAccessCode(ctx context.Context, code string, usedBy string) error {
	ok, err := s.codes.Consume(ctx, code, usedBy)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidAccessCode
	}
	return nil
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	User  models.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if input.Username == "" || input.Email == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	if len(input.Password) < s.cfg.Security.MinPasswordLength {
		return AuthResult{}, ErrPasswordTooShort
	}

	usernameTaken, emailTaken, err := s.users.UsernameOrEmailTaken(ctx, input.Username, input.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if usernameTaken {
		return AuthResult{}, ErrUsernameTaken
	}
	if emailTaken {
		return AuthResult{}, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	return s.issueUserToken(user)
}

func (s *AuthService) Login(ctx context.Context, login string, password string) (AuthResult, error) {
	login = strings.TrimSpace(login)

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueUserToken(user)
}

func (s *AuthService) issueUserToken(user models.User) (AuthResult, error) {
	token, err := security.GenerateUserToken(
		s.cfg.Security.JWTSecret,
		user.ID,
		user.Username,
		s.cfg.Security.UserTokenTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

// AdminLogin authenticates the separate admin identity and issues the
// 7-day token carrying the isAdmin claim.
func (s *AuthService) AdminLogin(ctx context.Context, username string, password string) (models.Admin, string, error) {
	admin, err := s.admins.FindActiveByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return models.Admin{}, "", ErrInvalidCredentials
		}
		return models.Admin{}, "", err
	}

	ok, err := security.VerifyPassword(password, admin.PasswordHash)
	if err != nil || !ok {
		return models.Admin{}, "", ErrInvalidCredentials
	}

	token, err := security.GenerateAdminToken(s.cfg.Security.JWTSecret, admin.Username, s.cfg.Security.AdminTokenTTL)
	if err != nil {
		return models.Admin{}, "", err
	}
	return admin, token, nil
}

// EnsureBootstrapAdmin upserts the configuration-supplied admin credential
// at startup. No credential ever lives in source.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context) error {
	username := s.cfg.Security.AdminUsername
	password := s.cfg.Security.AdminPassword
	if username == "" || password == "" {
		s.log.Warn().Msg("no bootstrap admin configured, admin login unavailable until one is created")
		return nil
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	return s.admins.Upsert(ctx, models.Admin{
		ID:           ids.New(),
		Username:     username,
		PasswordHash: passwordHash,
	})
}
