// Package schedules implements the collaborative schedule operations: create
// with compensation, membership, cell edits and structural camp/kid edits
// under a check-and-set retry protocol, and live subscriptions.
package schedules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campboard/campboard/internal/roster"
	"github.com/campboard/campboard/internal/schedule"
	"github.com/campboard/campboard/internal/store"
	"github.com/campboard/campboard/pkg/logger"
	"github.com/campboard/campboard/pkg/metrics"
)

var (
	// ErrNotAllowed is returned when the identity is neither owner nor
	// collaborator of the schedule.
	ErrNotAllowed = errors.New("not a member of this schedule")
	// ErrOutOfRange is returned for cell coordinates outside the grid.
	ErrOutOfRange = errors.New("cell coordinates out of range")
	// ErrTooMuchContention is returned when an edit keeps losing the
	// check-and-set race. The caller may simply retry.
	ErrTooMuchContention = errors.New("schedule too contended, retry")
)

// casRetries bounds the read-merge-write attempts per edit. Each retry
// re-reads the latest committed version, so losing the race never loses the
// other writer's cells.
const casRetries = 5

// idRetries bounds CreateSchedule attempts against id collisions.
const idRetries = 5

// Service coordinates schedule mutations against the document store.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Create provisions a schedule for one of the owner's kids and records it on
// the owner account. The two writes cannot span a transaction in this store,
// so the account append failing triggers a compensating delete of the fresh
// schedule; no orphan survives an error return.
func (s *Service) Create(ctx context.Context, ownerID, kidName string, startDate time.Time, weekCount int) (*schedule.Document, error) {
	if kidName == "" {
		return nil, fmt.Errorf("kid name required")
	}
	if weekCount < 1 {
		return nil, fmt.Errorf("weekCount must be positive, got %d", weekCount)
	}

	var d *schedule.Document
	created := false
	for attempt := 0; attempt < idRetries; attempt++ {
		d = schedule.New(kidName, ownerID, startDate, weekCount)
		err := s.store.CreateSchedule(ctx, d)
		if err == nil {
			created = true
			break
		}
		if err != store.ErrIDTaken {
			return nil, err
		}
		logger.Warnf("schedule id %s collided, regenerating", d.ID)
	}
	if !created {
		return nil, fmt.Errorf("could not allocate a schedule id after %d attempts", idRetries)
	}

	if err := s.appendToAccount(ctx, ownerID, d.ID); err != nil {
		// compensate: the schedule must not outlive a failed membership write
		if derr := s.store.DeleteSchedule(ctx, d.ID); derr != nil {
			logger.Errorf("compensating delete of schedule %s failed: %v", d.ID, derr)
		}
		return nil, fmt.Errorf("record schedule on account: %w", err)
	}
	return d, nil
}

func (s *Service) appendToAccount(ctx context.Context, identity, scheduleID string) error {
	a, err := s.store.GetAccount(ctx, identity)
	if err != nil {
		return err
	}
	ids, changed := roster.Add(a.Schedules, scheduleID)
	if !changed {
		return nil
	}
	return s.store.PatchAccount(ctx, identity, store.AccountPatch{Schedules: &ids})
}

func (s *Service) removeFromAccount(ctx context.Context, identity, scheduleID string) error {
	a, err := s.store.GetAccount(ctx, identity)
	if err != nil {
		return err
	}
	ids, changed := roster.Remove(a.Schedules, scheduleID)
	if !changed {
		return nil
	}
	return s.store.PatchAccount(ctx, identity, store.AccountPatch{Schedules: &ids})
}

// Get loads a schedule for a member identity.
func (s *Service) Get(ctx context.Context, identity, id string) (*schedule.Document, error) {
	d, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.CanView(identity) {
		return nil, ErrNotAllowed
	}
	return d, nil
}

// Delete removes a schedule (owner only) and detaches it from the owner and
// every collaborator account. Account cleanup failures are logged, not
// fatal: a dangling id resolves as not-found on next load.
func (s *Service) Delete(ctx context.Context, identity, id string) error {
	d, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		return err
	}
	if d.OwnerID != identity {
		return ErrNotAllowed
	}
	if err := s.store.DeleteSchedule(ctx, id); err != nil {
		return err
	}
	for _, member := range append([]string{d.OwnerID}, d.Collaborators...) {
		if err := s.removeFromAccount(ctx, member, id); err != nil {
			logger.Warnf("detach schedule %s from account %s: %v", id, member, err)
		}
	}
	return nil
}

// SetCell replaces the attendee list of exactly one cell. The edit is a
// read-merge-write of the whole schedule field guarded by the document
// version: losing the race to a concurrent editor re-reads and re-merges, so
// that editor's cells are never overwritten.
func (s *Service) SetCell(ctx context.Context, identity, id string, campIndex, weekIndex int, kids []string) (*schedule.Document, error) {
	return s.edit(ctx, identity, id, func(d *schedule.Document) (store.SchedulePatch, error) {
		if campIndex < 0 || campIndex >= len(d.Camps) || weekIndex < 0 || weekIndex >= d.WeekCount {
			return store.SchedulePatch{}, ErrOutOfRange
		}
		m := d.Assignment.Clone()
		m.Set(campIndex, weekIndex, kids)
		d.Assignment = m
		return store.SchedulePatch{Assignment: &m}, nil
	})
}

// AddCamp inserts a camp and remaps the grid in the same commit.
func (s *Service) AddCamp(ctx context.Context, identity, id, name string) (*schedule.Document, error) {
	return s.edit(ctx, identity, id, func(d *schedule.Document) (store.SchedulePatch, error) {
		if !d.AddCamp(name) {
			return store.SchedulePatch{}, errNoChange
		}
		return store.SchedulePatch{Camps: &d.Camps, Assignment: &d.Assignment}, nil
	})
}

// RemoveCamp deletes a camp, cascading the re-key in the same commit.
func (s *Service) RemoveCamp(ctx context.Context, identity, id, name string) (*schedule.Document, error) {
	return s.edit(ctx, identity, id, func(d *schedule.Document) (store.SchedulePatch, error) {
		if !d.RemoveCamp(name) {
			return store.SchedulePatch{}, errNoChange
		}
		return store.SchedulePatch{Camps: &d.Camps, Assignment: &d.Assignment}, nil
	})
}

// AddKid inserts a kid into the schedule's kid list. Camp attendance is not
// restricted to the owner's roster, so any name may be added.
func (s *Service) AddKid(ctx context.Context, identity, id, name string) (*schedule.Document, error) {
	return s.edit(ctx, identity, id, func(d *schedule.Document) (store.SchedulePatch, error) {
		if !d.AddKid(name) {
			return store.SchedulePatch{}, errNoChange
		}
		return store.SchedulePatch{AllKids: &d.AllKids}, nil
	})
}

// RemoveKid deletes a kid from the schedule and prunes every attendee list in
// the same commit.
func (s *Service) RemoveKid(ctx context.Context, identity, id, name string) (*schedule.Document, error) {
	return s.edit(ctx, identity, id, func(d *schedule.Document) (store.SchedulePatch, error) {
		if !d.RemoveKid(name) {
			return store.SchedulePatch{}, errNoChange
		}
		return store.SchedulePatch{AllKids: &d.AllKids, Assignment: &d.Assignment}, nil
	})
}

// AddCollaborator shares the schedule with another identity and records the
// schedule on that identity's account.
func (s *Service) AddCollaborator(ctx context.Context, identity, id, collaborator string) (*schedule.Document, error) {
	d, err := s.edit(ctx, identity, id, func(d *schedule.Document) (store.SchedulePatch, error) {
		if !d.AddCollaborator(collaborator) {
			return store.SchedulePatch{}, errNoChange
		}
		return store.SchedulePatch{Collaborators: &d.Collaborators}, nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.appendToAccount(ctx, collaborator, id); err != nil {
		logger.Warnf("attach schedule %s to account %s: %v", id, collaborator, err)
	}
	return d, nil
}

// RemoveCollaborator revokes access and detaches the schedule from that
// account.
func (s *Service) RemoveCollaborator(ctx context.Context, identity, id, collaborator string) (*schedule.Document, error) {
	d, err := s.edit(ctx, identity, id, func(d *schedule.Document) (store.SchedulePatch, error) {
		if !d.RemoveCollaborator(collaborator) {
			return store.SchedulePatch{}, errNoChange
		}
		return store.SchedulePatch{Collaborators: &d.Collaborators}, nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.removeFromAccount(ctx, collaborator, id); err != nil {
		logger.Warnf("detach schedule %s from account %s: %v", id, collaborator, err)
	}
	return d, nil
}

// ListForAccount loads every schedule recorded on the account, owned and
// shared alike. Ids whose schedule vanished are skipped.
func (s *Service) ListForAccount(ctx context.Context, identity string) ([]*schedule.Document, error) {
	a, err := s.store.GetAccount(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.store.GetSchedulesByIDs(ctx, a.Schedules)
}

// Summary projects the per-week itinerary for one kid.
func (s *Service) Summary(ctx context.Context, identity, id, kid string) ([]schedule.WeekSummary, error) {
	d, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return schedule.Summarize(d, kid), nil
}

// Subscribe streams committed versions of a schedule to a member until ctx is
// canceled.
func (s *Service) Subscribe(ctx context.Context, identity, id string) (<-chan store.Event, error) {
	d, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.CanView(identity) {
		return nil, ErrNotAllowed
	}
	return s.store.SubscribeSchedule(ctx, id)
}

// errNoChange aborts an edit loop without an error result: the mutation was
// a no-op (duplicate add, absent remove) and nothing needs committing.
var errNoChange = errors.New("no change")

// edit runs one mutation under the check-and-set loop: read the latest
// version, apply mutate to a working copy, commit against the version read.
// A version conflict means a concurrent editor committed first; the loop
// re-reads and re-applies so both edits land.
func (s *Service) edit(ctx context.Context, identity, id string, mutate func(*schedule.Document) (store.SchedulePatch, error)) (*schedule.Document, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		d, err := s.store.GetSchedule(ctx, id)
		if err != nil {
			return nil, err
		}
		if !d.CanEdit(identity) {
			return nil, ErrNotAllowed
		}
		patch, err := mutate(d)
		if err == errNoChange {
			return d, nil
		}
		if err != nil {
			return nil, err
		}
		err = s.store.PatchSchedule(ctx, id, patch, d.Version)
		if err == nil {
			metrics.ScheduleEdits.Inc()
			d.Version++
			return d, nil
		}
		if err != store.ErrVersionConflict {
			return nil, err
		}
		metrics.ScheduleEditConflicts.Inc()
		logger.Debugf("schedule %s edit lost check-and-set race (attempt %d), retrying", id, attempt+1)
	}
	return nil, ErrTooMuchContention
}
