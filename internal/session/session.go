// Package session holds the authentication context of the hiring platform
// API. A Session is created once at startup and passed to the API client
// explicitly.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// expiryLeeway treats tokens that are about to expire as expired already.
const expiryLeeway = 30 * time.Second

var (
	ErrNoToken         = errors.New("access token is empty")
	ErrInvalidated     = errors.New("session is invalidated")
	ErrNoRefreshToken  = errors.New("refresh token is not configured")
	ErrRefreshRejected = errors.New("token refresh returned no access token")
)

// Tokens is the pair issued by the login and refresh endpoints.
type Tokens struct {
	Access  string `json:"access_token" mapstructure:"access_token"`
	Refresh string `json:"refresh_token" mapstructure:"refresh_token"`
}

// Refresher exchanges a refresh token for a new pair.
type Refresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*Tokens, error)
}

type Session struct {
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	tokens      Tokens
	expiresAt   time.Time
	invalidated bool
}

func New(tokens Tokens, logger *zap.Logger) (*Session, error) {
	if tokens.Access == "" {
		return nil, ErrNoToken
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		logger: logger,
		now:    time.Now,
	}
	s.set(tokens)

	return s, nil
}

// Token returns the current access token.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.invalidated {
		return "", ErrInvalidated
	}

	return s.tokens.Access, nil
}

// ExpiresAt returns the exp claim of the access token. The zero time means
// the token carries no readable expiry.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.expiresAt
}

// Expired reports whether the access token is expired or about to expire.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expiresAt.IsZero() {
		return false
	}

	return !s.now().Add(expiryLeeway).Before(s.expiresAt)
}

// Refresh swaps the tokens using r. Any failure invalidates the session,
// the same way a failed refresh logs the user out in the web client.
func (s *Session) Refresh(ctx context.Context, r Refresher) error {
	s.mu.Lock()
	if s.invalidated {
		s.mu.Unlock()
		return ErrInvalidated
	}
	refreshToken := s.tokens.Refresh
	s.mu.Unlock()

	if refreshToken == "" {
		s.Invalidate()
		return ErrNoRefreshToken
	}

	tokens, err := r.RefreshTokens(ctx, refreshToken)
	if err == nil && (tokens == nil || tokens.Access == "") {
		err = ErrRefreshRejected
	}
	if err != nil {
		s.Invalidate()
		return fmt.Errorf("refreshing session: %w", err)
	}

	if tokens.Refresh == "" {
		tokens.Refresh = refreshToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invalidated {
		return ErrInvalidated
	}
	s.set(*tokens)

	s.logger.Info("session refreshed", zap.Time("expires_at", s.expiresAt))

	return nil
}

// Invalidate drops the tokens. Every later Token call fails.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.invalidated {
		return
	}
	s.invalidated = true
	s.tokens = Tokens{}
	s.expiresAt = time.Time{}

	s.logger.Warn("session invalidated")
}

func (s *Session) set(tokens Tokens) {
	s.tokens = tokens

	exp, err := Expiry(tokens.Access)
	if err != nil {
		s.logger.Debug("access token expiry is unknown", zap.Error(err))
	}
	s.expiresAt = exp
}

// Expiry reads the exp claim without verifying the signature. The signing
// key belongs to the API; the client only needs to know when to refresh.
func Expiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parsing access token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("reading exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}

	return exp.Time, nil
}
