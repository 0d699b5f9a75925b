package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/campboard/campboard/pkg/middleware"
)

// OIDCVerifier verifies ID tokens from an external issuer. The claims'
// subject becomes the account identity key.
type OIDCVerifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer and prepares a token verifier for the
// given client id.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover OIDC provider: %w", err)
	}
	return &OIDCVerifier{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify validates the raw ID token and exposes its claims.
func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	return v.verifier.Verify(ctx, raw)
}
