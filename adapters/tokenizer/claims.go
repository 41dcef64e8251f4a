package tokenizer

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/tokenizer/core"
)

// buildClaims copies the caller claims and writes the reserved fields on top,
// so a caller-supplied sub, iat or exp never survives into the payload.
func buildClaims(claims core.ClaimSet, subject string, issuedAt, expiresAt time.Time) jwt.MapClaims {
	payload := make(jwt.MapClaims, len(claims)+3)
	for k, v := range claims {
		payload[k] = v
	}

	if subject != "" {
		payload[core.ClaimSubject] = subject
	} else {
		delete(payload, core.ClaimSubject)
	}
	payload[core.ClaimIssuedAt] = issuedAt.Unix()
	payload[core.ClaimExpiresAt] = expiresAt.Unix()

	return payload
}
