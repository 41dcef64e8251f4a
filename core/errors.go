package core

import "errors"

var (
	// ErrKeyDerivation is returned when the encoded secret cannot be turned into an HMAC key
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrMalformedToken is returned when a token string is not a well-formed JWT
	ErrMalformedToken = errors.New("malformed token")

	// ErrSignatureInvalid is returned when a token signature does not match its content
	ErrSignatureInvalid = errors.New("invalid signature")

	// ErrTokenExpired is returned when a correctly signed token is past its expiration
	ErrTokenExpired = errors.New("token has expired")

	// ErrInvalidSubject is returned when a token carries no usable subject
	ErrInvalidSubject = errors.New("invalid subject")
)
