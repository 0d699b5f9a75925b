package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campboard/campboard/internal/config"
	"github.com/campboard/campboard/internal/models"
)

// GenerateAccessToken creates a signed JWT access token for the account
func GenerateAccessToken(cfg *config.Config, a *models.Account, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   a.ID,
		"email": a.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}
