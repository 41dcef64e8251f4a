package ports

import (
	"time"

	"github.com/layer-3/tokenizer/core"
)

// Tokenizer issues and verifies HMAC-signed tokens.
// The secret is passed per call in its base64 form; implementations hold no key state.
type Tokenizer interface {
	// EncodeSecretKey returns the standard base64 form of a raw secret
	EncodeSecretKey(secret []byte) string

	// Token issuance
	GenerateAccessToken(claims core.ClaimSet, subject string, expiresAt time.Time, encodedSecret string) (string, error)
	GenerateRefreshToken(subject string, expiresAt time.Time, encodedSecret string) (string, error)

	// Verification
	VerifySignature(token string, encodedSecret string) error
	ParseClaims(token string, encodedSecret string) (core.ClaimSet, error)
}
