package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClaimSet_Accessors(t *testing.T) {
	t.Parallel()

	claims := ClaimSet{
		ClaimSubject:   "member-1",
		ClaimIssuedAt:  float64(1_700_000_000),
		ClaimExpiresAt: json.Number("1700000600"),
		"roles":        []any{"USER"},
	}

	assert.Equal(t, "member-1", claims.Subject())

	iat, ok := claims.IssuedAt()
	assert.True(t, ok)
	assert.Equal(t, time.Unix(1_700_000_000, 0), iat)

	exp, ok := claims.ExpiresAt()
	assert.True(t, ok)
	assert.Equal(t, time.Unix(1_700_000_600, 0), exp)

	assert.Equal(t, ClaimSet{"roles": []any{"USER"}}, claims.Custom())
}

func TestClaimSet_MissingOrWrongType(t *testing.T) {
	t.Parallel()

	claims := ClaimSet{ClaimSubject: 42, ClaimExpiresAt: "tomorrow", ClaimIssuedAt: json.Number("x")}

	assert.Empty(t, claims.Subject())

	_, ok := claims.ExpiresAt()
	assert.False(t, ok)

	_, ok = claims.IssuedAt()
	assert.False(t, ok)

	assert.Empty(t, ClaimSet(nil).Custom())
}
