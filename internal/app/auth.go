package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

// TokenPrefix marks every session token this service issues.
const TokenPrefix = "tv_"

// AuthService issues opaque session tokens backed by the token store.
type AuthService struct {
	users  domain.UserRepository
	tokens domain.TokenStore
	ttl    time.Duration
}

func NewAuthService(users domain.UserRepository, tokens domain.TokenStore, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthService{users: users, tokens: tokens, ttl: ttl}
}

// Login verifies the password and returns a fresh token plus its session.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.Session{}, domain.ErrUnauthorized
		}
		return "", domain.Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.Session{}, domain.ErrUnauthorized
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", domain.Session{}, fmt.Errorf("generate token: %w", err)
	}
	token := TokenPrefix + hex.EncodeToString(buf)

	now := time.Now().UTC()
	sess := domain.Session{
		UserID:    user.ID,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.Put(ctx, token, sess, s.ttl); err != nil {
		return "", domain.Session{}, fmt.Errorf("store token: %w", err)
	}
	return token, sess, nil
}

// Authenticate resolves a presented token to its session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	if len(token) <= len(TokenPrefix) || token[:len(TokenPrefix)] != TokenPrefix {
		return domain.Session{}, domain.ErrUnauthorized
	}
	sess, ok, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok || time.Now().After(sess.ExpiresAt) {
		return domain.Session{}, domain.ErrUnauthorized
	}
	return sess, nil
}

// Revoke removes a token; revoking an unknown token is a no-op.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// Me returns the full user record behind a token.
func (s *AuthService) Me(ctx context.Context, token string) (domain.User, error) {
	sess, err := s.Authenticate(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	return s.users.GetUserByID(ctx, sess.UserID)
}

// TokenStats reports the live token count and the configured TTL.
func (s *AuthService) TokenStats(ctx context.Context) (map[string]any, error) {
	n, err := s.tokens.CountLive(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"live_tokens": n,
		"ttl_seconds": int(s.ttl.Seconds()),
	}, nil
}

// EmailCheck reports whether an account exists for the address.
func (s *AuthService) EmailCheck(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
