package service

import (
	"context"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const AccessTokenTTL = 12 * time.Hour

// AdminAuth checks the single back-office account configured through the
// environment.
type AdminAuth struct {
	Email        string
	PasswordHash string
	JWTSecret    []byte
	TTL          time.Duration
}

func (a *AdminAuth) Login(ctx context.Context, req transport.LoginRequest) (string, time.Time, error) {
	if err := validateStruct(req); err != nil {
		return "", time.Time{}, err
	}
	if a.Email == "" || a.PasswordHash == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if !strings.EqualFold(strings.TrimSpace(req.Email), a.Email) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if !hash.CheckPassword(a.PasswordHash, req.Password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	ttl := a.TTL
	if ttl <= 0 {
		ttl = AccessTokenTTL
	}
	return tokens.Issue(a.JWTSecret, a.Email, tokens.RoleAdmin, ttl)
}
