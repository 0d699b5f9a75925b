// Package store provides the document store the scheduling service runs
// against: accounts and schedules with top-level-field patch granularity,
// check-and-set versioning and live change subscriptions. Two
// implementations exist: MongoStore (production, Redis-backed notification)
// and MemoryStore (tests and local development).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/campboard/campboard/internal/models"
	"github.com/campboard/campboard/internal/schedule"
)

var (
	// ErrNotFound is returned for missing accounts or schedules.
	ErrNotFound = errors.New("not found")
	// ErrIDTaken is returned when CreateSchedule hits an existing id. A
	// collision must never silently overwrite another schedule; callers
	// retry with a fresh token.
	ErrIDTaken = errors.New("schedule id already taken")
	// ErrVersionConflict is returned when a patch's expected version no
	// longer matches the stored document (a concurrent writer committed
	// first). Callers re-read, re-merge and retry.
	ErrVersionConflict = errors.New("schedule version conflict")
)

// SchedulePatch names the top-level schedule fields a patch may replace.
// Nil fields are left untouched; set fields are overwritten whole
// (merge-at-top-level-field granularity, no nested patch).
type SchedulePatch struct {
	KidName       *string
	Collaborators *[]string
	Camps         *[]string
	AllKids       *[]string
	Assignment    *schedule.AssignmentMap
	StartDate     *time.Time
	WeekCount     *int
}

// AccountPatch is the account-side equivalent of SchedulePatch.
type AccountPatch struct {
	Email     *string
	Kids      *[]string
	Schedules *[]string
}

// Event is one committed schedule version delivered to a subscriber. Doc is
// nil when the schedule was deleted while subscribed; that is a normal
// transition, not an error.
type Event struct {
	ID      string
	Doc     *schedule.Document
	Deleted bool
}

// Store is the document store contract the services depend on. No operation
// spans more than one document; cross-document flows use compensating
// actions at the service layer.
type Store interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	// PutAccount fully replaces (or creates) the account document.
	PutAccount(ctx context.Context, a *models.Account) error
	// PatchAccount merges the set fields into the stored account.
	PatchAccount(ctx context.Context, id string, p AccountPatch) error

	GetSchedule(ctx context.Context, id string) (*schedule.Document, error)
	// CreateSchedule is insert-only; an existing id yields ErrIDTaken.
	CreateSchedule(ctx context.Context, d *schedule.Document) error
	// PatchSchedule merges the set fields when the stored version still
	// equals expectedVersion, bumping the version on success; otherwise it
	// returns ErrVersionConflict. Subscribers observe the committed result.
	PatchSchedule(ctx context.Context, id string, p SchedulePatch, expectedVersion int64) error
	DeleteSchedule(ctx context.Context, id string) error

	// GetSchedulesByIDs loads the subset of ids that still exist; vanished
	// ids are skipped, not an error.
	GetSchedulesByIDs(ctx context.Context, ids []string) ([]*schedule.Document, error)

	// SubscribeSchedule streams every committed version of one schedule in
	// commit order until ctx is canceled. The channel is closed on teardown
	// and nothing is delivered afterwards.
	SubscribeSchedule(ctx context.Context, id string) (<-chan Event, error)
	// SubscribeSchedules is the multi-document variant used by dashboards.
	SubscribeSchedules(ctx context.Context, ids []string) (<-chan Event, error)
}
