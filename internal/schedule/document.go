package schedule

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/campboard/campboard/internal/roster"
)

// Document is one kid's camp plan: the camp and kid lists, the sparse
// assignment grid and the calendar parameters. The bson/json field names are
// the persisted contract other tooling depends on; do not rename them.
//
// camps and allKids are always duplicate-free and lexicographically sorted;
// assignment keys are positional against those sorted lists, so every
// structural edit must go through the sync methods in sync.go.
type Document struct {
	ID            string        `bson:"id" json:"id"`
	KidName       string        `bson:"kidName" json:"kidName"`
	OwnerID       string        `bson:"ownerId" json:"ownerId"`
	Collaborators []string      `bson:"collaborators" json:"collaborators"`
	Camps         []string      `bson:"camps" json:"camps"`
	AllKids       []string      `bson:"allKids" json:"allKids"`
	Assignment    AssignmentMap `bson:"schedule" json:"schedule"`
	StartDate     time.Time     `bson:"startDate" json:"startDate"`
	WeekCount     int           `bson:"weekCount" json:"weekCount"`

	// Version guards read-merge-write cycles (check-and-set); it is bumped by
	// the store on every committed patch.
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// IDLength is the length of schedule identifiers.
const IDLength = 6

// NewID returns a short random uppercase alphanumeric schedule token.
// Uniqueness is not guaranteed here; the store rejects duplicates on insert
// and callers retry with a fresh token.
func NewID() string {
	b := make([]byte, IDLength)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("schedule id entropy: %v", err))
	}
	for i := range b {
		b[i] = idAlphabet[int(b[i])%len(idAlphabet)]
	}
	return string(b)
}

// New creates an empty schedule for one kid. The primary kid starts out as
// the only entry in allKids; week 1 begins at startDate (normalized to UTC).
func New(kidName, ownerID string, startDate time.Time, weekCount int) *Document {
	d := &Document{
		ID:            NewID(),
		KidName:       kidName,
		OwnerID:       ownerID,
		Collaborators: []string{},
		Camps:         []string{},
		AllKids:       []string{},
		Assignment:    NewAssignmentMap(),
		StartDate:     startDate.UTC(),
		WeekCount:     weekCount,
	}
	if kidName != "" {
		d.AllKids, _ = roster.Add(d.AllKids, kidName)
	}
	return d
}

// Validate checks the document's structural invariants: sorted unique lists,
// a positive week count and no assignment cell referencing an out-of-range
// camp or week index.
func (d *Document) Validate() error {
	if d.WeekCount < 1 {
		return fmt.Errorf("weekCount must be positive, got %d", d.WeekCount)
	}
	if err := validateSorted("camps", d.Camps); err != nil {
		return err
	}
	if err := validateSorted("allKids", d.AllKids); err != nil {
		return err
	}
	for key := range d.Assignment {
		c, w, ok := ParseCellKey(key)
		if !ok {
			return fmt.Errorf("malformed assignment key %q", key)
		}
		if c >= len(d.Camps) {
			return fmt.Errorf("assignment key %q references camp index %d, have %d camps", key, c, len(d.Camps))
		}
		if w >= d.WeekCount {
			return fmt.Errorf("assignment key %q references week index %d, have %d weeks", key, w, d.WeekCount)
		}
	}
	return nil
}

func validateSorted(field string, list []string) error {
	for i := 1; i < len(list); i++ {
		if list[i-1] >= list[i] {
			return fmt.Errorf("%s must be sorted and unique, %q before %q", field, list[i-1], list[i])
		}
	}
	return nil
}

// CanView reports whether identity may read the document.
func (d *Document) CanView(identity string) bool {
	return identity == d.OwnerID || roster.Contains(d.Collaborators, identity)
}

// CanEdit reports whether identity may mutate the document. Membership is the
// only permission model: owners and collaborators have identical edit rights.
func (d *Document) CanEdit(identity string) bool {
	return d.CanView(identity)
}

// AddCollaborator grants identity access. Returns false when already present
// or when identity is the owner (owners are implicit members).
func (d *Document) AddCollaborator(identity string) bool {
	if identity == "" || identity == d.OwnerID {
		return false
	}
	var changed bool
	d.Collaborators, changed = roster.Add(d.Collaborators, identity)
	return changed
}

// RemoveCollaborator revokes identity's access.
func (d *Document) RemoveCollaborator(identity string) bool {
	var changed bool
	d.Collaborators, changed = roster.Remove(d.Collaborators, identity)
	return changed
}

// WeekStart returns the UTC calendar date on which the given week begins.
func (d *Document) WeekStart(weekIndex int) time.Time {
	return d.StartDate.UTC().AddDate(0, 0, 7*weekIndex)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	cp := *d
	cp.Collaborators = append([]string(nil), d.Collaborators...)
	cp.Camps = append([]string(nil), d.Camps...)
	cp.AllKids = append([]string(nil), d.AllKids...)
	cp.Assignment = d.Assignment.Clone()
	return &cp
}
