package auth

import (
	"context"
	"errors"
	"fmt"

	"reservehub/config"
	"reservehub/internal/models"
	"reservehub/internal/repository"
)

var (
	ErrAccountGone     = errors.New("account no longer exists")
	ErrAccountInactive = errors.New("account is inactive")
)

// AccountLookup loads the account a token was issued to.
type AccountLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Authenticate verifies the token and loads its account. Role and status are read from the
// store, not the claims, so a demotion or deactivation applies to tokens already issued.
func Authenticate(ctx context.Context, cfg *config.JWTConfig, users AccountLookup, token string) (*models.User, error) {
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		return nil, err
	}
	u, err := users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountGone
	}
	if err != nil {
		return nil, fmt.Errorf("load account %d: %w", claims.UserID, err)
	}
	if !u.IsActive() {
		return nil, ErrAccountInactive
	}
	return u, nil
}
