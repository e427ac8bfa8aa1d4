package domain

import (
	"context"
	"time"
)

// RevokedTokenKeyPrefix prefixes raw tokens in the shared revocation cache.
const RevokedTokenKeyPrefix = "blacklisted:"

// Principal is the authenticated caller extracted from a validated token.
type Principal struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

// TokenVerifier verifies a raw token and returns its payload.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// TokenIssuer signs tokens for a principal. Only used by tooling and tests;
// credential issuance lives in the identity service.
type TokenIssuer interface {
	Issue(p *Principal, expiry time.Duration) (string, error)
}

// RevocationCache answers whether a raw token has been revoked.
type RevocationCache interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Gatekeeper authenticates the raw Authorization header value.
type Gatekeeper interface {
	Authenticate(ctx context.Context, header string) (*Principal, error)
}
