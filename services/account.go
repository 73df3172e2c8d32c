package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sarveshwaran777333/Water-buddy/models"
	"github.com/sarveshwaran777333/Water-buddy/utils"
)

// AccountService creates accounts and validates logins. Passwords are only
// ever stored as bcrypt hashes; there is no plaintext fallback path.
type AccountService struct {
	repo   *Repository
	logger *zap.Logger
}

func NewAccountService(repo *Repository, logger *zap.Logger) *AccountService {
	return &AccountService{repo: repo, logger: logger}
}

// Register creates a new account with the default profile and settings
// block. Usernames are case-sensitive and must be unique.
func (s *AccountService) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	_, _, err := s.repo.FindUserByUsername(ctx, username)
	if err == nil {
		return "", ErrDuplicateUsername
	}
	if !errors.Is(err, ErrUserNotFound) {
		return "", err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Profile:      models.DefaultProfile(),
		Settings:     models.DefaultSettings(),
	}

	uid, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return "", err
	}

	s.logger.Info("account_created",
		zap.String("uid", uid),
		zap.String("username", username),
	)
	return uid, nil
}

// Authenticate returns the uid on a correct username/password pair. Unknown
// usernames and wrong passwords produce the same error.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	uid, user, err := s.repo.FindUserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.logger.Warn("login_failed", zap.String("username", username))
		return "", ErrInvalidCredentials
	}
	return uid, nil
}
