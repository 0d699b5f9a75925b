package identity

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campboard/campboard/internal/models"
	"github.com/campboard/campboard/internal/store"
)

// minPasswordLength is the weak-password cutoff for local signups.
const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// PasswordProvider implements local email/password authentication against
// the account store. OIDC deployments skip it entirely.
type PasswordProvider struct {
	store store.Store
}

func NewPasswordProvider(s store.Store) *PasswordProvider {
	return &PasswordProvider{store: s}
}

// SignUp creates an account for a new guardian. The email must be unused and
// well-formed, the password at least minPasswordLength characters. The
// email-uniqueness check races with concurrent signups for the same address;
// the window is accepted (the second writer overwrites nothing, it just
// creates a second account a support task can merge).
func (p *PasswordProvider) SignUp(ctx context.Context, email, password string) (*models.Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailPattern.MatchString(email) {
		return nil, authErr(CodeInvalidEmail, "that email address doesn't look right")
	}
	if len(password) < minPasswordLength {
		return nil, authErr(CodeWeakPassword, "password must be at least 8 characters")
	}
	if _, err := p.store.GetAccountByEmail(ctx, email); err == nil {
		return nil, authErr(CodeEmailInUse, "an account with that email already exists")
	} else if err != store.ErrNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a := &models.Account{
		ID:           "local:" + uuid.NewString(),
		Email:        email,
		Kids:         []string{},
		Schedules:    []string{},
		PasswordHash: string(hash),
	}
	if err := p.store.PutAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate verifies email/password and returns the account. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (p *PasswordProvider) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	a, err := p.store.GetAccountByEmail(ctx, email)
	if err == store.ErrNotFound {
		return nil, authErr(CodeInvalidCredential, "wrong email or password")
	}
	if err != nil {
		return nil, err
	}
	if a.PasswordHash == "" {
		// OIDC-provisioned account; no local password to check
		return nil, authErr(CodeInvalidCredential, "wrong email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, authErr(CodeInvalidCredential, "wrong email or password")
	}
	return a, nil
}
