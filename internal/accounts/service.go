// Package accounts holds guardian-account business logic: provisioning on
// first authentication, kid roster edits and the unscheduled-kids query.
package accounts

import (
	"context"
	"fmt"

	"github.com/campboard/campboard/internal/models"
	"github.com/campboard/campboard/internal/roster"
	"github.com/campboard/campboard/internal/store"
)

// Service encapsulates account operations over the document store.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// EnsureFromClaims provisions (or returns) the account for an authenticated
// identity. Called on every authenticated request that needs the account, so
// first authentication creates the record transparently.
func (s *Service) EnsureFromClaims(ctx context.Context, claims map[string]interface{}) (*models.Account, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("claims missing subject")
	}
	email, _ := claims["email"].(string)
	return s.Ensure(ctx, sub, email)
}

// Ensure returns the account for identity, creating an empty one on first
// sight.
func (s *Service) Ensure(ctx context.Context, identity, email string) (*models.Account, error) {
	a, err := s.store.GetAccount(ctx, identity)
	if err == nil {
		return a, nil
	}
	if err != store.ErrNotFound {
		return nil, err
	}
	a = &models.Account{
		ID:        identity,
		Email:     email,
		Kids:      []string{},
		Schedules: []string{},
	}
	if err := s.store.PutAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get loads an account.
func (s *Service) Get(ctx context.Context, identity string) (*models.Account, error) {
	return s.store.GetAccount(ctx, identity)
}

// AddKid inserts a kid name into the account roster. Blank and duplicate
// names are silent no-ops; the stored roster stays sorted and unique.
func (s *Service) AddKid(ctx context.Context, identity, name string) (*models.Account, error) {
	a, err := s.store.GetAccount(ctx, identity)
	if err != nil {
		return nil, err
	}
	kids, changed := roster.Add(a.Kids, name)
	if !changed {
		return a, nil
	}
	if err := s.store.PatchAccount(ctx, identity, store.AccountPatch{Kids: &kids}); err != nil {
		return nil, err
	}
	a.Kids = kids
	return a, nil
}

// RemoveKid deletes a kid name from the roster; absent names are no-ops.
func (s *Service) RemoveKid(ctx context.Context, identity, name string) (*models.Account, error) {
	a, err := s.store.GetAccount(ctx, identity)
	if err != nil {
		return nil, err
	}
	kids, changed := roster.Remove(a.Kids, name)
	if !changed {
		return a, nil
	}
	if err := s.store.PatchAccount(ctx, identity, store.AccountPatch{Kids: &kids}); err != nil {
		return nil, err
	}
	a.Kids = kids
	return a, nil
}

// Unscheduled returns the roster kids that have no schedule yet, matched by
// kid name against the schedules the account can see.
func (s *Service) Unscheduled(ctx context.Context, identity string) ([]string, error) {
	a, err := s.store.GetAccount(ctx, identity)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.GetSchedulesByIDs(ctx, a.Schedules)
	if err != nil {
		return nil, err
	}
	scheduled := make([]string, 0, len(docs))
	for _, d := range docs {
		scheduled = append(scheduled, d.KidName)
	}
	return roster.Unscheduled(a.Kids, scheduled), nil
}
