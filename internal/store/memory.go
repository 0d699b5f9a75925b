package store

import (
	"context"
	"sync"
	"time"

	"github.com/campboard/campboard/internal/models"
	"github.com/campboard/campboard/internal/schedule"
)

// subscriberBuffer bounds how far a slow subscriber may lag before it starts
// losing events.
const subscriberBuffer = 64

// MemoryStore is the in-memory Store used by unit tests and local
// development. It honors the same semantics as the Mongo store: check-and-set
// patches, insert-only creates and commit-ordered subscription delivery.
type MemoryStore struct {
	mu        sync.RWMutex
	accounts  map[string]*models.Account
	schedules map[string]*schedule.Document
	subs      map[string]map[int]*memorySub
	nextSubID int
}

type memorySub struct {
	ids map[string]bool // empty means "all ids in the original set"; keyed filter
	ch  chan Event
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  map[string]*models.Account{},
		schedules: map[string]*schedule.Document{},
		subs:      map[string]map[int]*memorySub{},
	}
}

func (s *MemoryStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	cp.Kids = append([]string(nil), a.Kids...)
	cp.Schedules = append([]string(nil), a.Schedules...)
	return &cp, nil
}

func (s *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Email == email {
			cp := *a
			cp.Kids = append([]string(nil), a.Kids...)
			cp.Schedules = append([]string(nil), a.Schedules...)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) PutAccount(ctx context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	cp := *a
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	cp.Kids = append([]string(nil), a.Kids...)
	cp.Schedules = append([]string(nil), a.Schedules...)
	s.accounts[cp.ID] = &cp
	return nil
}

func (s *MemoryStore) PatchAccount(ctx context.Context, id string, p AccountPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return ErrNotFound
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.Kids != nil {
		a.Kids = append([]string(nil), (*p.Kids)...)
	}
	if p.Schedules != nil {
		a.Schedules = append([]string(nil), (*p.Schedules)...)
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) GetSchedule(ctx context.Context, id string) (*schedule.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

func (s *MemoryStore) CreateSchedule(ctx context.Context, d *schedule.Document) error {
	s.mu.Lock()
	if _, exists := s.schedules[d.ID]; exists {
		s.mu.Unlock()
		return ErrIDTaken
	}
	now := time.Now().UTC()
	cp := d.Clone()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.Version = 1
	s.schedules[cp.ID] = cp
	s.deliver(cp.ID, Event{ID: cp.ID, Doc: cp.Clone()})
	s.mu.Unlock()

	d.Version = cp.Version
	d.CreatedAt = cp.CreatedAt
	d.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *MemoryStore) PatchSchedule(ctx context.Context, id string, p SchedulePatch, expectedVersion int64) error {
	s.mu.Lock()
	d, ok := s.schedules[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if d.Version != expectedVersion {
		s.mu.Unlock()
		return ErrVersionConflict
	}
	if p.KidName != nil {
		d.KidName = *p.KidName
	}
	if p.Collaborators != nil {
		d.Collaborators = append([]string(nil), (*p.Collaborators)...)
	}
	if p.Camps != nil {
		d.Camps = append([]string(nil), (*p.Camps)...)
	}
	if p.AllKids != nil {
		d.AllKids = append([]string(nil), (*p.AllKids)...)
	}
	if p.Assignment != nil {
		d.Assignment = p.Assignment.Clone()
	}
	if p.StartDate != nil {
		d.StartDate = p.StartDate.UTC()
	}
	if p.WeekCount != nil {
		d.WeekCount = *p.WeekCount
	}
	d.Version++
	d.UpdatedAt = time.Now().UTC()
	s.deliver(id, Event{ID: id, Doc: d.Clone()})
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteSchedule(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.schedules[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.schedules, id)
	s.deliver(id, Event{ID: id, Deleted: true})
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetSchedulesByIDs(ctx context.Context, ids []string) ([]*schedule.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*schedule.Document, 0, len(ids))
	for _, id := range ids {
		if d, ok := s.schedules[id]; ok {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) SubscribeSchedule(ctx context.Context, id string) (<-chan Event, error) {
	return s.SubscribeSchedules(ctx, []string{id})
}

func (s *MemoryStore) SubscribeSchedules(ctx context.Context, ids []string) (<-chan Event, error) {
	sub := &memorySub{ids: map[string]bool{}, ch: make(chan Event, subscriberBuffer)}
	for _, id := range ids {
		sub.ids[id] = true
	}

	s.mu.Lock()
	s.nextSubID++
	key := s.nextSubID
	for id := range sub.ids {
		if s.subs[id] == nil {
			s.subs[id] = map[int]*memorySub{}
		}
		s.subs[id][key] = sub
	}
	s.mu.Unlock()

	// teardown on cancel: unregister first, then close, so nothing is
	// delivered after the channel closes
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		for id := range sub.ids {
			delete(s.subs[id], key)
			if len(s.subs[id]) == 0 {
				delete(s.subs, id)
			}
		}
		close(sub.ch)
		s.mu.Unlock()
	}()

	return sub.ch, nil
}

// deliver fans one committed event out to the id's subscribers. Must be
// called with mu held; closing a subscription also happens under mu, so a
// send can never race a close. Sends are non-blocking: a subscriber that
// overflows its buffer loses events rather than stalling writers.
func (s *MemoryStore) deliver(id string, ev Event) {
	for _, sub := range s.subs[id] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}
