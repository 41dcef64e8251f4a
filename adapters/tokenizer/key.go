package tokenizer

import (
	"encoding/base64"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/tokenizer/core"
)

// signingKey is the decoded secret together with the HMAC variant its length supports
type signingKey struct {
	secret []byte
	method *jwt.SigningMethodHMAC
}

// Strongest first: a key picks the widest hash it can fully key.
var hmacMethods = []*jwt.SigningMethodHMAC{
	jwt.SigningMethodHS512,
	jwt.SigningMethodHS384,
	jwt.SigningMethodHS256,
}

// minKeyLength is the shortest key in bytes accepted for the method,
// equal to the size of its hash output.
func minKeyLength(method *jwt.SigningMethodHMAC) int {
	return method.Hash.Size()
}

// ValidateSecretKey reports whether encoded can be used to sign and verify
// tokens. Call it at startup so a bad secret aborts boot instead of failing
// the first request.
func ValidateSecretKey(encoded string) error {
	_, err := deriveSigningKey(encoded)
	return err
}

// deriveSigningKey decodes the base64 secret and selects the HMAC algorithm
// from its length. Short keys are rejected, never padded or truncated.
func deriveSigningKey(encoded string) (signingKey, error) {
	secret, err := decodeSecret(encoded)
	if err != nil {
		return signingKey{}, err
	}

	for _, method := range hmacMethods {
		if len(secret) >= minKeyLength(method) {
			return signingKey{secret: secret, method: method}, nil
		}
	}

	return signingKey{}, fmt.Errorf("secret key is %d bytes, at least %d required: %w",
		len(secret), minKeyLength(jwt.SigningMethodHS256), core.ErrKeyDerivation)
}

func decodeSecret(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, fmt.Errorf("empty secret key: %w", core.ErrKeyDerivation)
	}

	secret, err := base64.StdEncoding.DecodeString(encoded)
	if err == nil {
		return secret, nil
	}

	// Accept unpadded input as well
	if len(encoded)%4 != 0 {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(encoded); rawErr == nil {
			return raw, nil
		}
	}

	return nil, fmt.Errorf("failed to decode secret key: %w: %w", core.ErrKeyDerivation, err)
}
