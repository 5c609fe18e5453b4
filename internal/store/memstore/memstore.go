// Package memstore is an in-process store.Repository. Transactions are
// serialized by a single lock and commit by swapping in a modified copy of the
// state, so a failed operation leaves nothing behind.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinicsched/internal/domain"
	"clinicsched/internal/store"
)

type capKey struct {
	location uuid.UUID
	day      domain.Weekday
}

type state struct {
	locations    map[uuid.UUID]domain.Location
	appointments map[uuid.UUID]domain.Appointment
	overrides    map[uuid.UUID]domain.Override
	weekly       map[uuid.UUID]domain.WeeklyAvailability
	caps         map[capKey]domain.DailyCap
}

func newState() *state {
	return &state{
		locations:    map[uuid.UUID]domain.Location{},
		appointments: map[uuid.UUID]domain.Appointment{},
		overrides:    map[uuid.UUID]domain.Override{},
		weekly:       map[uuid.UUID]domain.WeeklyAvailability{},
		caps:         map[capKey]domain.DailyCap{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.appointments {
		c.appointments[k] = v
	}
	for k, v := range s.overrides {
		c.overrides[k] = v
	}
	for k, v := range s.weekly {
		c.weekly[k] = v
	}
	for k, v := range s.caps {
		c.caps[k] = v
	}
	return c
}

type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

func New() *Store {
	return &Store{state: newState(), now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) InTx(ctx context.Context, fn store.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(ctx, &tx{st: working, now: s.now}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) View(ctx context.Context, fn store.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, &tx{st: s.state, now: s.now, readOnly: true})
}

func (s *Store) ListAppointments(ctx context.Context, q store.AppointmentQuery) (store.AppointmentPage, error) {
	q = q.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(q.Filter.Search)
	var rows []domain.Appointment
	for _, a := range s.state.appointments {
		if (q.ProviderID != "" && a.ProviderID != q.ProviderID) || !matchesFilter(a, q.Filter) {
			continue
		}
		if search != "" {
			locName := strings.ToLower(s.state.locations[a.LocationID].Name)
			if !strings.Contains(strings.ToLower(a.Reason), search) &&
				!strings.Contains(strings.ToLower(a.Notes), search) &&
				!strings.Contains(locName, search) {
				continue
			}
		}
		rows = append(rows, a)
	}

	less := s.lessFunc(q.Sort)
	sort.SliceStable(rows, func(i, j int) bool {
		if q.Descending {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})

	page := store.AppointmentPage{Total: len(rows), Page: q.Page, PageSize: q.PageSize}
	start := q.Offset()
	if start >= len(rows) {
		page.Items = []domain.Appointment{}
		return page, nil
	}
	end := start + q.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	page.Items = rows[start:end]
	return page, nil
}

func (s *Store) lessFunc(field store.SortField) func(a, b domain.Appointment) bool {
	byDate := func(a, b domain.Appointment) bool {
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.StartTime < b.StartTime
	}
	switch field {
	case store.SortByPatient:
		return func(a, b domain.Appointment) bool { return a.PatientID < b.PatientID }
	case store.SortByType:
		return func(a, b domain.Appointment) bool { return a.Type < b.Type }
	case store.SortByStatus:
		return func(a, b domain.Appointment) bool { return a.Status < b.Status }
	case store.SortByLocation:
		return func(a, b domain.Appointment) bool {
			return s.state.locations[a.LocationID].Name < s.state.locations[b.LocationID].Name
		}
	case store.SortByCreated:
		return func(a, b domain.Appointment) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	return byDate
}

func matchesFilter(a domain.Appointment, f store.AppointmentFilter) bool {
	if f.From != nil && a.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && a.Date.After(*f.To) {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, st := range f.Statuses {
			if a.Status == st {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.LocationID != uuid.Nil && a.LocationID != f.LocationID {
		return false
	}
	if f.PatientID != "" && a.PatientID != f.PatientID {
		return false
	}
	return true
}

func (s *Store) ListFeedEvents(ctx context.Context, providerID string, from, to domain.Date) ([]domain.FeedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var appts []domain.Appointment
	for _, a := range s.state.appointments {
		if a.ProviderID != providerID || a.Status == domain.StatusCanceled {
			continue
		}
		if a.Date.Before(from) || !a.Date.Before(to) {
			continue
		}
		appts = append(appts, a)
	}
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date.Before(appts[j].Date)
		}
		return appts[i].StartTime < appts[j].StartTime
	})

	out := make([]domain.FeedEvent, 0, len(appts))
	for _, a := range appts {
		out = append(out, domain.NewFeedEvent(a, s.state.locations[a.LocationID].Name))
	}
	return out, nil
}
