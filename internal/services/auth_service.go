package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"planets-be/config"
	"planets-be/internal/models"
	"planets-be/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthService struct {
	cfg   *config.Config
	users UserStore
	now   func() time.Time
}

func NewAuthService(cfg *config.Config, users UserStore) *AuthService {
	return &AuthService{cfg: cfg, users: users, now: time.Now}
}

// Register creates a user with the default role and signs them in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := utils.SanitizeText(req.Username)

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	if taken {
		return nil, models.NewConflict("Email " + email + " is taken.")
	}
	taken, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	if taken {
		return nil, models.NewConflict("Username " + username + " is taken.")
	}

	now := s.now()
	user := &models.User{
		Username:  username,
		Email:     email,
		FirstName: utils.SanitizeText(req.FirstName),
		LastName:  utils.SanitizeText(req.LastName),
		PfpLink:   models.DefaultProfilePicture,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, models.NewValidation(err)
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hash

	if err := s.users.Create(ctx, user); err != nil {
		return nil, conflictOr(err, "Email or username is taken.")
	}
	return s.issueTokens(ctx, user, "User created successfully.")
}

// Login accepts either an email or a username as the login name.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	candidates, err := s.users.FindByLogin(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, models.NewInternal(err)
	}
	if len(candidates) == 0 {
		return nil, models.NewNotFound("Email/username not found.")
	}
	for i := range candidates {
		if utils.CheckPassword(candidates[i].Password, req.Password) == nil {
			return s.issueTokens(ctx, &candidates[i], "Successful login.")
		}
	}
	return nil, models.NewUnauthorized("Incorrect password.")
}

// Refresh rotates a refresh token. Only the most recently issued one is accepted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	claims, err := utils.ValidateToken(refreshToken, s.cfg.JWTSecret)
	if err != nil {
		if errors.Is(err, utils.ErrExpiredToken) {
			return nil, models.NewUnauthorized("Refresh token has expired.")
		}
		return nil, models.NewUnauthorized("Invalid refresh token.")
	}
	if claims.TokenType != utils.TokenTypeRefresh {
		return nil, models.NewUnauthorized("Invalid refresh token.")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, models.NewUnauthorized("Invalid refresh token.")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found.")
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, models.NewUnauthorized("Refresh token has been revoked.")
	}
	return s.issueTokens(ctx, user, "Token refreshed successfully.")
}

// Logout revokes the caller's refresh token. Access tokens expire on their own.
func (s *AuthService) Logout(ctx context.Context, actor Actor) error {
	if err := s.users.UpdateRefreshToken(ctx, actor.UserID, ""); err != nil {
		return notFoundOr(err, "User not found.")
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, actor Actor) (*models.User, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFoundOr(err, "User not found.")
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, message string) (*models.AuthResponse, error) {
	userID := user.ID.Hex()
	role := string(user.Role)

	access, err := utils.GenerateAccessToken(userID, user.Email, role, s.cfg.JWTSecret, s.cfg.JWTAccessExpiration)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	refresh, err := utils.GenerateRefreshToken(userID, user.Email, role, s.cfg.JWTSecret, s.cfg.JWTRefreshExpiration)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, models.NewInternal(err)
	}
	return &models.AuthResponse{Token: access, RefreshToken: refresh, Message: message}, nil
}
