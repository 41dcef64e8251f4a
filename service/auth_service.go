package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/tokenizer/core"
	"github.com/layer-3/tokenizer/ports"
	"go.uber.org/zap"
)

const (
	// DefaultAccessTTL is the default lifetime of access tokens
	DefaultAccessTTL = 10 * time.Minute

	// DefaultRefreshTTL is the default lifetime of refresh tokens
	DefaultRefreshTTL = 24 * time.Hour
)

// ClaimsResolver supplies the claims for a subject when a refresh token is
// exchanged, since refresh tokens carry no claims of their own.
type ClaimsResolver func(ctx context.Context, subject string) (core.ClaimSet, error)

// AuthService issues, refreshes and validates session tokens
type AuthService struct {
	tokenizer     ports.Tokenizer
	eventPub      ports.EventPublisher
	encodedSecret string
	resolver      ClaimsResolver
	logger        *zap.Logger
	now           func() time.Time

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Option configures an AuthService
type Option func(*AuthService)

// WithTTL overrides the access and refresh token lifetimes
func WithTTL(access, refresh time.Duration) Option {
	return func(s *AuthService) {
		if access > 0 {
			s.accessTTL = access
		}
		if refresh > 0 {
			s.refreshTTL = refresh
		}
	}
}

// WithClaimsResolver sets the source of claims for refreshed access tokens
func WithClaimsResolver(resolver ClaimsResolver) Option {
	return func(s *AuthService) { s.resolver = resolver }
}

// WithEventPublisher announces issued tokens through pub
func WithEventPublisher(pub ports.EventPublisher) Option {
	return func(s *AuthService) { s.eventPub = pub }
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *AuthService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the clock used to compute expirations
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAuthService creates a new authentication service
func NewAuthService(tokenizer ports.Tokenizer, encodedSecret string, opts ...Option) *AuthService {
	s := &AuthService{
		tokenizer:     tokenizer,
		encodedSecret: encodedSecret,
		logger:        zap.NewNop(),
		now:           time.Now,
		accessTTL:     DefaultAccessTTL,
		refreshTTL:    DefaultRefreshTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AccessTTL returns the configured access token lifetime
func (s *AuthService) AccessTTL() time.Duration {
	return s.accessTTL
}

// Issue creates an access and a refresh token for an authenticated subject
func (s *AuthService) Issue(ctx context.Context, subject string, claims core.ClaimSet) (*core.TokenPair, error) {
	if subject == "" {
		return nil, core.ErrInvalidSubject
	}

	now := s.now()
	pair := &core.TokenPair{
		AccessExpiry:  now.Add(s.accessTTL),
		RefreshExpiry: now.Add(s.refreshTTL),
	}

	var err error
	pair.AccessToken, err = s.tokenizer.GenerateAccessToken(claims, subject, pair.AccessExpiry, s.encodedSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	pair.RefreshToken, err = s.tokenizer.GenerateRefreshToken(subject, pair.RefreshExpiry, s.encodedSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	s.publishIssued(ctx, subject, now, pair)

	return pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
// An expired refresh token yields core.ErrTokenExpired.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*core.TokenPair, error) {
	claims, err := s.tokenizer.ParseClaims(refreshToken, s.encodedSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	subject := claims.Subject()
	if subject == "" {
		return nil, fmt.Errorf("invalid refresh token: %w", core.ErrInvalidSubject)
	}

	var accessClaims core.ClaimSet
	if s.resolver != nil {
		accessClaims, err = s.resolver(ctx, subject)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve claims: %w", err)
		}
	}

	return s.Issue(ctx, subject, accessClaims)
}

// ValidateAccessToken verifies an access token and returns the session it describes
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.Session, error) {
	claims, err := s.tokenizer.ParseClaims(accessToken, s.encodedSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}

	session := &core.Session{
		Subject: claims.Subject(),
		Claims:  claims.Custom(),
	}
	session.IssuedAt, _ = claims.IssuedAt()
	session.ExpiresAt, _ = claims.ExpiresAt()

	return session, nil
}

func (s *AuthService) publishIssued(ctx context.Context, subject string, issuedAt time.Time, pair *core.TokenPair) {
	if s.eventPub == nil {
		return
	}

	// Tokens are already signed; a lost event only gets logged
	err := errors.Join(
		s.eventPub.PublishIssued(ctx, subject, ports.TokenKindAccess, issuedAt, pair.AccessExpiry),
		s.eventPub.PublishIssued(ctx, subject, ports.TokenKindRefresh, issuedAt, pair.RefreshExpiry),
	)
	if err != nil {
		s.logger.Warn("failed to publish issuance event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
