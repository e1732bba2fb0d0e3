package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"storefront/internal/ids"
	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRecoveryMismatch   = errors.New("recovery answer does not match")
)

type AuthService struct {
	users *repository.UserRepository
	codec *security.TokenCodec
	log   zerolog.Logger
}

func NewAuthService(users *repository.UserRepository, codec *security.TokenCodec, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		codec: codec,
		log:   log,
	}
}

type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	RecoveryAnswer string
	Phone          string
	Address        string
}

// AuthResult carries the signed credential plus the profile payload sent
// back for display. The profile is a convenience for clients; authorization
// decisions are always made server side from fresh lookups.
type AuthResult struct {
	Token string
	User  models.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashSecret(input.Password)
	if err != nil {
		return AuthResult{}, err
	}
	recoveryHash, err := security.HashSecret(normalizeAnswer(input.RecoveryAnswer))
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:                 ids.New(),
		Name:               strings.TrimSpace(input.Name),
		Email:              input.Email,
		PasswordHash:       passwordHash,
		RecoverySecretHash: recoveryHash,
		Phone:              strings.TrimSpace(input.Phone),
		Address:            strings.TrimSpace(input.Address),
		Role:               models.RoleStandard,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifySecret(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

// ResetPassword swaps the password after the account recovery answer checks
// out. The flow is deliberately token-free: the recovery answer is the only
// proof of ownership.
func (s *AuthService) ResetPassword(ctx context.Context, email, recoveryAnswer, newPassword string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrRecoveryMismatch
		}
		return err
	}

	ok, err := security.VerifySecret(normalizeAnswer(recoveryAnswer), user.RecoverySecretHash)
	if err != nil || !ok {
		return ErrRecoveryMismatch
	}

	hash, err := security.HashSecret(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset via recovery answer")
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (models.User, error) {
	return s.users.GetByID(ctx, userID)
}

type ProfileUpdate struct {
	Name        string
	Phone       string
	Address     string
	NewPassword string
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (models.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, strings.TrimSpace(update.Name), strings.TrimSpace(update.Phone), strings.TrimSpace(update.Address)); err != nil {
		return models.User{}, err
	}

	if update.NewPassword != "" {
		hash, err := security.HashSecret(update.NewPassword)
		if err != nil {
			return models.User{}, err
		}
		if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
			return models.User{}, err
		}
	}

	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	token, err := s.codec.Issue(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// Recovery answers are matched loosely: case and surrounding space do not
// count.
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
