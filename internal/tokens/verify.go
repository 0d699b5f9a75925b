package tokens

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campboard/campboard/internal/config"
	"github.com/campboard/campboard/internal/sessions"
	"github.com/campboard/campboard/pkg/middleware"
)

type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	m, ok := v.(*map[string]interface{})
	if !ok {
		return fmt.Errorf("unsupported claims target %T", v)
	}
	*m = map[string]interface{}(t.claims)
	return nil
}

// Verifier validates locally-issued HS256 access tokens, including the
// logout blacklist. It satisfies the same contract as the OIDC verifier so
// the auth middleware does not care which issued the token.
type Verifier struct {
	cfg *config.Config
}

func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{cfg: cfg}
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if black, err := sessions.IsAccessTokenBlacklisted(ctx, raw); err == nil && black {
		return nil, fmt.Errorf("token revoked")
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(v.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	return &claimsToken{claims: claims}, nil
}
