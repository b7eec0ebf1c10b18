package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret", "linkvault")

	signed, err := m.GenerateToken("user-1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.OwnerID())
	assert.Equal(t, "linkvault", claims.Issuer)
}

func TestGenerateToken_RequiresUser(t *testing.T) {
	_, err := NewManager("s", "").GenerateToken("  ")
	assert.ErrorIs(t, err, ErrMissingOwner)
}

func TestValidateToken_Rejects(t *testing.T) {
	m := NewManager("test-secret", "linkvault")

	otherSecret, err := NewManager("other", "linkvault").GenerateToken("user-1")
	require.NoError(t, err)
	otherIssuer, err := NewManager("test-secret", "elsewhere").GenerateToken("user-1")
	require.NoError(t, err)
	expired, err := m.WithTTL(-time.Minute).GenerateToken("user-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", otherSecret},
		{"wrong issuer", otherIssuer},
		{"expired", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestValidateToken_SubjectFallback(t *testing.T) {
	m := NewManager("test-secret", "")

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "sub-only",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := m.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "sub-only", claims.OwnerID())
}

func TestValidateToken_NoOwnerClaim(t *testing.T) {
	m := NewManager("test-secret", "")

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrMissingOwner)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	m := NewManager("test-secret", "")

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, CustomClaims{UserID: "user-1"})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.ValidateToken(signed)
	assert.Error(t, err)
}
