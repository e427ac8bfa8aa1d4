package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamup/internal/domain"
)

type fakeVerifier struct {
	tokens map[string]*domain.Principal
}

func (f *fakeVerifier) Verify(token string) (*domain.Principal, error) {
	if p, ok := f.tokens[token]; ok {
		return p, nil
	}
	return nil, domain.ErrInvalidToken
}

type fakeRevocations struct {
	revoked map[string]bool
	err     error
	seen    []string
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	f.seen = append(f.seen, token)
	return f.revoked[token], f.err
}

func TestGatekeeper_Authenticate(t *testing.T) {
	ctx := context.Background()
	verifier := &fakeVerifier{tokens: map[string]*domain.Principal{
		"good":    {UserID: "user-1", Name: "Ann"},
		"revoked": {UserID: "user-2"},
	}}

	tests := []struct {
		name    string
		header  string
		want    *domain.Principal
		wantErr error
	}{
		{name: "bearer prefix", header: "Bearer good", want: &domain.Principal{UserID: "user-1", Name: "Ann"}},
		{name: "lowercase prefix", header: "bearer good", want: &domain.Principal{UserID: "user-1", Name: "Ann"}},
		{name: "raw token", header: "good", want: &domain.Principal{UserID: "user-1", Name: "Ann"}},
		{name: "empty header", header: "", wantErr: domain.ErrMissingToken},
		{name: "prefix only", header: "Bearer ", wantErr: domain.ErrMissingToken},
		{name: "revoked", header: "Bearer revoked", wantErr: domain.ErrTokenRevoked},
		{name: "invalid", header: "Bearer forged", wantErr: domain.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &fakeRevocations{revoked: map[string]bool{"revoked": true}}
			got, err := NewGatekeeper(verifier, cache).Authenticate(ctx, tt.header)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"good"}, cache.seen)
		})
	}
}

func TestGatekeeper_CacheUnavailableFailsClosed(t *testing.T) {
	cache := &fakeRevocations{err: domain.ErrInfrastructure}
	_, err := NewGatekeeper(&fakeVerifier{}, cache).Authenticate(context.Background(), "Bearer good")
	require.ErrorIs(t, err, domain.ErrInfrastructure)
}
