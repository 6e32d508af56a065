package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mail_admin/internal/metrics"
	"mail_admin/internal/model"
	"mail_admin/internal/repository"
	"mail_admin/internal/utils"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessDenied       = errors.New("access denied: administrator privileges required")
	ErrMissingCredentials = errors.New("email and password are required")
)

// AuthService provides admin authentication
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, m *metrics.Metrics, log zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
		metrics:  m,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// Login authenticates an admin and returns a signed session token.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.metrics.RecordLogin(metrics.LoginError)
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		s.metrics.RecordLogin(metrics.LoginInvalidCredentials)
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.metrics.RecordLogin(metrics.LoginInvalidCredentials)
		return nil, "", ErrInvalidCredentials
	}

	if user.Role != model.RoleAdmin {
		s.log.Warn().Str("email", email).Str("role", user.Role).Msg("unauthorized login attempt")
		s.metrics.RecordLogin(metrics.LoginDenied)
		return nil, "", ErrAccessDenied
	}

	token, err := s.jwtUtil.GenerateToken(user)
	if err != nil {
		s.metrics.RecordLogin(metrics.LoginError)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.metrics.RecordLogin(metrics.LoginSuccess)
	s.log.Info().Int64("user_id", user.ID).Msg("admin authenticated")
	return user, token, nil
}
