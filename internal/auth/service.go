package auth

import (
	"context"
	"time"

	"github.com/kobopay/kobopay/internal/config"
	"github.com/kobopay/kobopay/internal/identity"
)

// Service issues access tokens for authenticated users.
type Service struct {
	cfg config.Config
	ids *identity.Service
}

// NewService creates an auth service delegating credential checks to identity.
func NewService(cfg config.Config, ids *identity.Service) *Service {
	return &Service{cfg: cfg, ids: ids}
}

// Token bundles an issued access token with its lifetime.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login validates credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (identity.User, Token, error) {
	user, err := s.ids.Authenticate(ctx, email, password)
	if err != nil {
		return identity.User{}, Token{}, err
	}
	signed, err := SignToken(user.ID, user.Email, user.Role, []byte(s.cfg.JWTSecret), s.cfg.TokenTTL)
	if err != nil {
		return identity.User{}, Token{}, err
	}
	return user, Token{AccessToken: signed, ExpiresIn: int64(s.cfg.TokenTTL / time.Second)}, nil
}
