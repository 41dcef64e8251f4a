package tokenizer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/tokenizer/core"
	"github.com/layer-3/tokenizer/ports"
)

// maxTokenLength bounds the input accepted by the parser
const maxTokenLength = 8192

// HMACTokenizer implements the Tokenizer interface with HMAC-signed JWTs.
// It keeps no key material; every call derives the key from the encoded secret.
type HMACTokenizer struct {
	now func() time.Time
}

var _ ports.Tokenizer = (*HMACTokenizer)(nil)

// Option configures an HMACTokenizer
type Option func(*HMACTokenizer)

// WithClock replaces the wall clock used for iat and expiry checks
func WithClock(now func() time.Time) Option {
	return func(t *HMACTokenizer) {
		if now != nil {
			t.now = now
		}
	}
}

// NewHMACTokenizer creates a new HMAC tokenizer
func NewHMACTokenizer(opts ...Option) *HMACTokenizer {
	t := &HMACTokenizer{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// EncodeSecretKey returns the standard base64 encoding of the raw secret.
// No length check happens here; that is left to key derivation.
func (t *HMACTokenizer) EncodeSecretKey(secret []byte) string {
	return base64.StdEncoding.EncodeToString(secret)
}

// GenerateAccessToken signs a token carrying the claims, subject, issued-at and expiration.
// expiresAt is not compared to the current time.
func (t *HMACTokenizer) GenerateAccessToken(claims core.ClaimSet, subject string, expiresAt time.Time, encodedSecret string) (string, error) {
	signedToken, err := t.sign(claims, subject, expiresAt, encodedSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signedToken, nil
}

// GenerateRefreshToken signs a token carrying only subject, issued-at and expiration
func (t *HMACTokenizer) GenerateRefreshToken(subject string, expiresAt time.Time, encodedSecret string) (string, error) {
	signedToken, err := t.sign(nil, subject, expiresAt, encodedSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return signedToken, nil
}

// VerifySignature checks the token signature and expiration.
// It returns nil for a valid token and one of core.ErrMalformedToken,
// core.ErrSignatureInvalid, core.ErrTokenExpired or core.ErrKeyDerivation otherwise.
func (t *HMACTokenizer) VerifySignature(tokenStr string, encodedSecret string) error {
	_, err := t.ParseClaims(tokenStr, encodedSecret)
	return err
}

// ParseClaims verifies the token like VerifySignature and returns its payload
func (t *HMACTokenizer) ParseClaims(tokenStr string, encodedSecret string) (core.ClaimSet, error) {
	key, err := deriveSigningKey(encodedSecret)
	if err != nil {
		return nil, err
	}

	if tokenStr == "" {
		return nil, fmt.Errorf("empty token: %w", core.ErrMalformedToken)
	}
	if len(tokenStr) > maxTokenLength {
		return nil, fmt.Errorf("token exceeds %d bytes: %w", maxTokenLength, core.ErrMalformedToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods(methodNames()),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	token, err := parser.ParseWithClaims(tokenStr, jwt.MapClaims{}, key.keyFunc)
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid claims type: %w", core.ErrMalformedToken)
	}

	return core.ClaimSet(claims), nil
}

func (t *HMACTokenizer) sign(claims core.ClaimSet, subject string, expiresAt time.Time, encodedSecret string) (string, error) {
	key, err := deriveSigningKey(encodedSecret)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(key.method, buildClaims(claims, subject, t.now(), expiresAt))

	return token.SignedString(key.secret)
}

// keyFunc hands the secret to the parser once the header algorithm is known
// to be an HMAC variant this key is long enough for.
func (k signingKey) keyFunc(token *jwt.Token) (interface{}, error) {
	method, ok := token.Method.(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unexpected signing method %v: %w", token.Header["alg"], core.ErrSignatureInvalid)
	}

	if len(k.secret) < minKeyLength(method) {
		return nil, fmt.Errorf("secret key too short for %s: %w", method.Alg(), core.ErrSignatureInvalid)
	}

	return k.secret, nil
}

// classifyParseError maps jwt parser failures onto the core taxonomy.
// Order matters: the parser verifies the signature before it looks at exp,
// so an expiry error always belongs to a correctly signed token.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", core.ErrTokenExpired, err)
	case errors.Is(err, core.ErrSignatureInvalid):
		return err
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", core.ErrSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %w", core.ErrMalformedToken, err)
	}
}

func methodNames() []string {
	names := make([]string, 0, len(hmacMethods))
	for _, m := range hmacMethods {
		names = append(names, m.Alg())
	}
	return names
}
