package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"teamup/internal/domain"
)

func TestRedisCache_IsRevoked(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, mr.Set("blacklisted:revoked-token", "1"))
	require.NoError(t, mr.Set("blacklisted:empty-value", ""))
	mr.SetTTL("blacklisted:revoked-token", time.Hour)

	cache := NewRedisCache(client)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "revoked", token: "revoked-token", want: true},
		{name: "any value counts", token: "empty-value", want: true},
		{name: "unknown token", token: "fresh-token", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cache.IsRevoked(ctx, tt.token)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRedisCache_IsRevoked_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	_, err := NewRedisCache(client).IsRevoked(context.Background(), "any")
	require.ErrorIs(t, err, domain.ErrInfrastructure)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("redis://localhost:6379/2")
	require.NoError(t, err)
	require.Equal(t, 2, c.Options().DB)
	require.NoError(t, c.Close())

	_, err = NewClient("::not a url")
	require.Error(t, err)
}
