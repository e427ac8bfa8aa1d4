package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamup/internal/domain"
)

func TestJWTIssuer_Issue(t *testing.T) {
	secret := "test-secret"
	issuer := NewJWTIssuer(secret)

	token, err := issuer.Issue(&domain.Principal{UserID: "user-123", Name: "Ann", Email: "u@example.com", IsAdmin: true}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Parse and verify claims
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "Ann", claims.Name)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
}

func TestJWTVerifier_Verify(t *testing.T) {
	secret := "test-secret"
	issuer := NewJWTIssuer(secret)
	verifier := NewJWTVerifier(secret)

	valid, err := issuer.Issue(&domain.Principal{UserID: "user-1", Name: "Ann"}, time.Hour)
	require.NoError(t, err)
	expired, err := issuer.Issue(&domain.Principal{UserID: "user-1", Name: "Ann"}, -time.Minute)
	require.NoError(t, err)
	foreign, err := NewJWTIssuer("other-secret").Issue(&domain.Principal{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)
	noSubject, err := issuer.Issue(&domain.Principal{Name: "Ghost"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		want    *domain.Principal
		wantErr bool
	}{
		{name: "valid", token: valid, want: &domain.Principal{UserID: "user-1", Name: "Ann"}},
		{name: "expired", token: expired, wantErr: true},
		{name: "wrong secret", token: foreign, wantErr: true},
		{name: "missing subject", token: noSubject, wantErr: true},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := verifier.Verify(tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidToken)
				require.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
