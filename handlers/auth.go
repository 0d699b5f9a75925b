package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campboard/campboard/internal/accounts"
	"github.com/campboard/campboard/internal/config"
	"github.com/campboard/campboard/internal/identity"
	"github.com/campboard/campboard/internal/sessions"
	"github.com/campboard/campboard/internal/tokens"
	"github.com/campboard/campboard/pkg/logger"
	"github.com/campboard/campboard/pkg/middleware"
)

// CredentialsRequest is the body of signup and password login.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler wires guardian authentication: local email/password signup and
// login, OIDC token exchange, refresh and logout.
type AuthHandler struct {
	cfg         *config.Config
	passwords   *identity.PasswordProvider
	accountsSvc *accounts.Service
	sessionsSvc *sessions.Service
	oidcVer     middleware.Verifier // nil when no external issuer is configured
}

func NewAuthHandler(cfg *config.Config, p *identity.PasswordProvider, a *accounts.Service, s *sessions.Service, oidcVer middleware.Verifier) *AuthHandler {
	return &AuthHandler{cfg: cfg, passwords: p, accountsSvc: a, sessionsSvc: s, oidcVer: oidcVer}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/signup", h.SignUp)
	a.POST("/login", h.Login)
	a.POST("/login/oidc", h.LoginOIDC)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

// authStatus maps an auth failure class to an HTTP status. Every failure
// stays retryable: the client shows the message and the guardian re-submits.
func authStatus(code identity.AuthCode) int {
	switch code {
	case identity.CodeInvalidCredential, identity.CodePopupClosed:
		return http.StatusUnauthorized
	case identity.CodeEmailInUse:
		return http.StatusConflict
	case identity.CodeWeakPassword, identity.CodeInvalidEmail:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	ae := identity.AsAuthError(err)
	if ae.Code == identity.CodeUnknown {
		logger.Errorf("auth failure: %v", err)
	}
	c.JSON(authStatus(ae.Code), gin.H{"error": ae.Message, "code": string(ae.Code)})
}

// SignUp creates a local account and logs the guardian straight in.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.passwords.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	h.issueTokens(c, a.ID, a.Email, http.StatusCreated)
}

// Login verifies email/password and issues tokens.
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.passwords.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	h.issueTokens(c, a.ID, a.Email, http.StatusOK)
}

// LoginOIDC exchanges an externally-issued ID token for local tokens,
// provisioning the account on first sight.
func (h *AuthHandler) LoginOIDC(c *gin.Context) {
	if h.oidcVer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "no external identity provider configured"})
		return
	}
	var req struct {
		IDToken string `json:"idToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tok, err := h.oidcVer.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password", "code": string(identity.CodeInvalidCredential)})
		return
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
		return
	}
	a, err := h.accountsSvc.EnsureFromClaims(c.Request.Context(), claims)
	if err != nil {
		logger.Errorf("account provisioning failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
		return
	}
	h.issueTokens(c, a.ID, a.Email, http.StatusOK)
}

func (h *AuthHandler) issueTokens(c *gin.Context, accountID, email string, status int) {
	// make sure the account record exists before the first authenticated call
	a, err := h.accountsSvc.Ensure(c.Request.Context(), accountID, email)
	if err != nil {
		logger.Errorf("account provisioning failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
		return
	}
	refresh, err := h.sessionsSvc.CreateSession(c.Request.Context(), a.ID, h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, a, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(status, gin.H{
		"accessToken":  access,
		"refreshToken": refresh,
		"account":      a,
		"expiresIn":    int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

// Refresh accepts a refresh token and returns a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.sessionsSvc.ValidateRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	a, err := h.accountsSvc.Get(c.Request.Context(), sess.AccountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "account lookup failed"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, a, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access, "expiresIn": int(h.cfg.JWT.AccessTokenTTL.Seconds())})
}

// Logout invalidates the refresh token and blacklists the presented access
// token for its remaining lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	auth := c.GetHeader("Authorization")
	if auth != "" {
		var at string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &at); n == 1 {
			if exp, err := parseExpFromJWT(at); err == nil {
				if ttl := time.Until(exp); ttl > 0 {
					if err := sessions.BlacklistAccessToken(c.Request.Context(), at, ttl); err != nil {
						c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
						return
					}
				}
			}
		}
	}
	if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// parseExpFromJWT decodes the JWT payload and returns the `exp` claim.
// Payload-only parsing (no signature check) is fine here: it only computes
// the remaining TTL for blacklisting.
func parseExpFromJWT(tok string) (time.Time, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid token")
	}
	b, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		b, err = base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			return time.Time{}, err
		}
	}
	var claims map[string]interface{}
	if err := json.Unmarshal(b, &claims); err != nil {
		return time.Time{}, err
	}
	v, ok := claims["exp"]
	if !ok {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	switch vv := v.(type) {
	case float64:
		return time.Unix(int64(vv), 0), nil
	case json.Number:
		i64, err := vv.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(i64, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported exp type %T", v)
	}
}
