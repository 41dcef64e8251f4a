package core

import (
	"encoding/json"
	"time"
)

// Reserved claim names written by the tokenizer on every token
const (
	ClaimSubject   = "sub"
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
)

// ClaimSet is the unstructured payload of a token.
// Values must be JSON-serializable.
type ClaimSet map[string]any

// Subject returns the sub claim, or an empty string when absent
func (c ClaimSet) Subject() string {
	sub, _ := c[ClaimSubject].(string)
	return sub
}

// IssuedAt returns the iat claim
func (c ClaimSet) IssuedAt() (time.Time, bool) {
	return c.timeClaim(ClaimIssuedAt)
}

// ExpiresAt returns the exp claim
func (c ClaimSet) ExpiresAt() (time.Time, bool) {
	return c.timeClaim(ClaimExpiresAt)
}

// Custom returns a copy of the claims without the reserved entries.
func (c ClaimSet) Custom() ClaimSet {
	out := make(ClaimSet, len(c))
	for k, v := range c {
		switch k {
		case ClaimSubject, ClaimIssuedAt, ClaimExpiresAt:
			continue
		}
		out[k] = v
	}
	return out
}

// timeClaim accepts float64 (encoding/json default), json.Number and
// int64 (claims built in-process before signing).
func (c ClaimSet) timeClaim(key string) (time.Time, bool) {
	switch v := c[key].(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0), true
	default:
		return time.Time{}, false
	}
}
