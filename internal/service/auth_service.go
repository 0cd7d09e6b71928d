package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"reservehub/config"
	"reservehub/internal/auth"
	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrInactive     = errors.New("account is inactive")
	ErrWeakPassword = fmt.Errorf("%w: password must be at least 8 characters", repository.ErrValidation)
)

const minPasswordLen = 8

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

type AuthService struct {
	cfg      *config.JWTConfig
	userRepo *repository.UserRepository
}

func NewAuthService(cfg *config.JWTConfig, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

// Register creates a guest account. Guests become members when their application is approved.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email", repository.ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return nil, "", ErrWeakPassword
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, "", fmt.Errorf("%w: name is required", repository.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         domain.RoleGuest,
		Status:       domain.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, "", ErrEmailExists
		}
		return nil, "", err
	}
	token, err := auth.GenerateAccessToken(s.cfg, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", err
	}
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCreds
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCreds
	}
	if !u.IsActive() {
		return nil, "", ErrInactive
	}
	token, err := auth.GenerateAccessToken(s.cfg, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// ChangePassword updates the user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	if len(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateFields(ctx, userID, map[string]any{"password_hash": string(hash)})
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// SetFCMToken registers (or clears, with "") the device token used for push delivery.
func (s *AuthService) SetFCMToken(ctx context.Context, userID uint, token string) error {
	return s.userRepo.SetFCMToken(ctx, userID, token)
}
