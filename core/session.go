package core

import "time"

// Session is the verified view of an access token
type Session struct {
	Subject   string    // Identity asserted by the token
	IssuedAt  time.Time // When the token was issued
	ExpiresAt time.Time // When the token stops being accepted
	Claims    ClaimSet  // Caller-supplied claims, reserved entries removed
}

// TokenPair is the result of a login or refresh
type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	AccessExpiry  time.Time
	RefreshExpiry time.Time
}
