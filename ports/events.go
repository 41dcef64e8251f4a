package ports

import (
	"context"
	"time"
)

// TokenKind tells access tokens from refresh tokens in issuance events
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// EventPublisher announces issued tokens to other instances and auditors
type EventPublisher interface {
	PublishIssued(ctx context.Context, subject string, kind TokenKind, issuedAt, expiresAt time.Time) error
}
