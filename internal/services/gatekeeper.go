package services

import (
	"context"
	"strings"

	"teamup/internal/domain"
)

const bearerPrefix = "bearer "

type gatekeeper struct {
	verifier    domain.TokenVerifier
	revocations domain.RevocationCache
}

// NewGatekeeper returns a Gatekeeper that rejects revoked tokens before verifying them.
func NewGatekeeper(verifier domain.TokenVerifier, revocations domain.RevocationCache) domain.Gatekeeper {
	return &gatekeeper{verifier: verifier, revocations: revocations}
}

func (g *gatekeeper) Authenticate(ctx context.Context, header string) (*domain.Principal, error) {
	token := strings.TrimSpace(header)
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = strings.TrimSpace(token[len(bearerPrefix):])
	}
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	revoked, err := g.revocations.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}
	return g.verifier.Verify(token)
}
