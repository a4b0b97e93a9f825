package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/auth"
	"github.com/stayease/stayease-api/internal/pkg/email"
)

// AuthService handles authentication operations
type AuthService struct {
	users      UserStore
	tokens     TokenStore
	jwtService *auth.JWTService
	mailer     email.EmailService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	tokens TokenStore,
	jwtService *auth.JWTService,
	mailer email.EmailService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		jwtService: jwtService,
		mailer:     mailer,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a resident account without an apartment and signs it in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:    strings.TrimSpace(req.Email),
		Password: hashed,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
		Role:     models.RoleResident,
		Status:   models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(user.Email, user.FullName); err != nil {
			s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to send welcome email")
		}
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Resident registered")
	return s.issueTokens(ctx, user)
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Could not update last login time")
	} else {
		user.LastLoginAt = &now
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new pair issued
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	stored, err := s.tokens.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored.Revoked {
		// Reuse of a rotated token revokes every session of the user
		if err := s.tokens.RevokeAllForUser(ctx, stored.UserID); err != nil {
			s.logger.Error().Err(err).Int64("userID", stored.UserID).Msg("Failed to revoke tokens after reuse")
		}
		return nil, apperrors.ErrTokenRevoked
	}
	if stored.ExpiresAt.Before(s.now()) {
		_ = s.tokens.Revoke(ctx, refreshToken)
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes a refresh token. Unknown or already revoked tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.tokens.Revoke(ctx, refreshToken)
	if err != nil && !apperrors.Is(err, apperrors.ErrTokenRevoked, apperrors.ErrTokenNotFound) {
		return err
	}
	return nil
}

// Me returns the profile of the authenticated user
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// issueTokens creates a token pair and stores the refresh token
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	err = s.tokens.Create(ctx, &models.RefreshToken{
		Token:     pair.RefreshToken,
		UserID:    user.ID,
		ExpiresAt: pair.RefreshExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             pair.ExpiresIn,
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: pair.RefreshExpiresIn,
		},
		User: user,
	}, nil
}
