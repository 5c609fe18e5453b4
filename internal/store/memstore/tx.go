package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"clinicsched/internal/domain"
	"clinicsched/internal/store"
)

type tx struct {
	st       *state
	now      func() time.Time
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return store.ErrReadOnly
	}
	return nil
}

// LockBookingScopes is a no-op: the store lock already serializes every
// transaction.
func (t *tx) LockBookingScopes(ctx context.Context, scopes ...domain.BookingScope) error {
	return nil
}

func (t *tx) GetLocation(ctx context.Context, id uuid.UUID) (domain.Location, error) {
	loc, ok := t.st.locations[id]
	if !ok {
		return domain.Location{}, store.ErrNotFound
	}
	return loc, nil
}

func (t *tx) ListLocations(ctx context.Context, providerID string, includeInactive bool) ([]domain.Location, error) {
	var out []domain.Location
	for _, l := range t.st.locations {
		if l.ProviderID == providerID && (includeInactive || l.Active) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *tx) InsertLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	if err := t.writable(); err != nil {
		return domain.Location{}, err
	}
	if loc.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Location{}, err
		}
		loc.ID = id
	}
	now := t.now()
	loc.CreatedAt, loc.UpdatedAt = now, now
	t.st.locations[loc.ID] = loc
	return loc, nil
}

func (t *tx) SetLocationActive(ctx context.Context, providerID string, id uuid.UUID, active bool) error {
	if err := t.writable(); err != nil {
		return err
	}
	loc, ok := t.st.locations[id]
	if !ok || loc.ProviderID != providerID {
		return store.ErrNotFound
	}
	loc.Active = active
	loc.UpdatedAt = t.now()
	t.st.locations[id] = loc
	return nil
}

func (t *tx) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	a, ok := t.st.appointments[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (t *tx) ListDayAppointments(ctx context.Context, locationID uuid.UUID, date domain.Date) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range t.st.appointments {
		if a.LocationID == locationID && a.Date == date {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

// overlapsOccupied mirrors the appointments_no_overlap exclusion constraint.
func (t *tx) overlapsOccupied(a domain.Appointment) bool {
	if !a.Status.Occupying() {
		return false
	}
	for _, other := range t.st.appointments {
		if other.ID == a.ID || !other.Status.Occupying() || other.Scope() != a.Scope() {
			continue
		}
		if other.Window().Overlaps(a.Window()) {
			return true
		}
	}
	return false
}

func (t *tx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if err := t.writable(); err != nil {
		return domain.Appointment{}, err
	}
	if appt.ID != uuid.Nil {
		if existing, ok := t.st.appointments[appt.ID]; ok {
			if !samePayload(existing, appt) {
				return domain.Appointment{}, store.ErrIdempotencyConflict
			}
			return existing, nil
		}
	} else {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Appointment{}, err
		}
		appt.ID = id
	}
	if t.overlapsOccupied(appt) {
		return domain.Appointment{}, store.ErrConflict
	}
	now := t.now()
	appt.CreatedAt, appt.UpdatedAt = now, now
	t.st.appointments[appt.ID] = appt
	return appt, nil
}

func samePayload(a, b domain.Appointment) bool {
	return a.PatientID == b.PatientID &&
		a.ProviderID == b.ProviderID &&
		a.LocationID == b.LocationID &&
		a.Date == b.Date &&
		a.StartTime == b.StartTime &&
		a.Type == b.Type
}

func (t *tx) UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if err := t.writable(); err != nil {
		return domain.Appointment{}, err
	}
	existing, ok := t.st.appointments[appt.ID]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	if t.overlapsOccupied(appt) {
		return domain.Appointment{}, store.ErrConflict
	}
	appt.CreatedAt = existing.CreatedAt
	appt.CreatedBy = existing.CreatedBy
	appt.UpdatedAt = t.now()
	t.st.appointments[appt.ID] = appt
	return appt, nil
}

func (t *tx) ListOverrides(ctx context.Context, providerID string, from, to domain.Date) ([]domain.Override, error) {
	var out []domain.Override
	for _, o := range t.st.overrides {
		if o.ProviderID != providerID || o.Date.Before(from) || o.Date.After(to) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (t *tx) InsertOverride(ctx context.Context, o domain.Override) (domain.Override, error) {
	if err := t.writable(); err != nil {
		return domain.Override{}, err
	}
	if o.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Override{}, err
		}
		o.ID = id
	}
	o.CreatedAt = t.now()
	t.st.overrides[o.ID] = o
	return o, nil
}

func (t *tx) DeleteOverride(ctx context.Context, providerID string, id uuid.UUID) error {
	if err := t.writable(); err != nil {
		return err
	}
	o, ok := t.st.overrides[id]
	if !ok || o.ProviderID != providerID {
		return store.ErrNotFound
	}
	delete(t.st.overrides, id)
	return nil
}

func (t *tx) ListWeeklySlots(ctx context.Context, locationID uuid.UUID) ([]domain.WeeklyAvailability, error) {
	var out []domain.WeeklyAvailability
	for _, w := range t.st.weekly {
		if w.LocationID == locationID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (t *tx) InsertWeeklySlot(ctx context.Context, w domain.WeeklyAvailability) (domain.WeeklyAvailability, error) {
	if err := t.writable(); err != nil {
		return domain.WeeklyAvailability{}, err
	}
	for _, existing := range t.st.weekly {
		if domain.WeeklySlotsOverlap(existing, w) {
			return domain.WeeklyAvailability{}, store.ErrConflict
		}
	}
	if w.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.WeeklyAvailability{}, err
		}
		w.ID = id
	}
	w.CreatedAt = t.now()
	t.st.weekly[w.ID] = w
	return w, nil
}

func (t *tx) DeleteWeeklySlot(ctx context.Context, providerID string, id uuid.UUID) error {
	if err := t.writable(); err != nil {
		return err
	}
	w, ok := t.st.weekly[id]
	if !ok || t.st.locations[w.LocationID].ProviderID != providerID {
		return store.ErrNotFound
	}
	delete(t.st.weekly, id)
	return nil
}

func (t *tx) GetDailyCap(ctx context.Context, locationID uuid.UUID, day domain.Weekday) (domain.DailyCap, error) {
	c, ok := t.st.caps[capKey{locationID, day}]
	if !ok {
		return domain.DailyCap{}, store.ErrNotFound
	}
	return c, nil
}

func (t *tx) ListDailyCaps(ctx context.Context, locationID uuid.UUID) ([]domain.DailyCap, error) {
	var out []domain.DailyCap
	for k, c := range t.st.caps {
		if k.location == locationID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out, nil
}

func (t *tx) UpsertDailyCap(ctx context.Context, c domain.DailyCap) (domain.DailyCap, error) {
	if err := t.writable(); err != nil {
		return domain.DailyCap{}, err
	}
	key := capKey{c.LocationID, c.DayOfWeek}
	if existing, ok := t.st.caps[key]; ok {
		c.ID = existing.ID
	} else if c.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.DailyCap{}, err
		}
		c.ID = id
	}
	c.UpdatedAt = t.now()
	t.st.caps[key] = c
	return c, nil
}

func (t *tx) DeleteDailyCap(ctx context.Context, locationID uuid.UUID, day domain.Weekday) error {
	if err := t.writable(); err != nil {
		return err
	}
	key := capKey{locationID, day}
	if _, ok := t.st.caps[key]; !ok {
		return store.ErrNotFound
	}
	delete(t.st.caps, key)
	return nil
}
