package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"clinicsched/internal/domain"
	"clinicsched/internal/store"
)

type schedulingTx struct {
	tx       bun.Tx
	readOnly bool
}

// lockKeys returns the distinct advisory lock keys for scopes in ascending
// order, so concurrent bookers always acquire them in the same sequence.
func lockKeys(scopes []domain.BookingScope) []string {
	seen := make(map[string]struct{}, len(scopes))
	keys := make([]string, 0, len(scopes))
	for _, s := range scopes {
		k := s.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r schedulingTx) LockBookingScopes(ctx context.Context, scopes ...domain.BookingScope) error {
	for _, key := range lockKeys(scopes) {
		if _, err := r.tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r schedulingTx) GetLocation(ctx context.Context, id uuid.UUID) (domain.Location, error) {
	var loc domain.Location
	err := r.tx.NewSelect().Model(&loc).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return domain.Location{}, translate(err)
	}
	return loc, nil
}

func (r schedulingTx) ListLocations(ctx context.Context, providerID string, includeInactive bool) ([]domain.Location, error) {
	var rows []domain.Location
	q := r.tx.NewSelect().Model(&rows).Where("provider_id = ?", providerID)
	if !includeInactive {
		q = q.Where("active")
	}
	if err := q.OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r schedulingTx) InsertLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	if _, err := r.tx.NewInsert().Model(&loc).Returning("*").Exec(ctx); err != nil {
		return domain.Location{}, translate(err)
	}
	return loc, nil
}

func (r schedulingTx) SetLocationActive(ctx context.Context, providerID string, id uuid.UUID, active bool) error {
	res, err := r.tx.NewUpdate().
		Model((*domain.Location)(nil)).
		Set("active = ?", active).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("provider_id = ?", providerID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r schedulingTx) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var a domain.Appointment
	q := r.tx.NewSelect().Model(&a).Where("id = ?", id).Limit(1)
	if !r.readOnly {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		return domain.Appointment{}, translate(err)
	}
	return a, nil
}

func (r schedulingTx) ListDayAppointments(ctx context.Context, locationID uuid.UUID, date domain.Date) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.tx.NewSelect().
		Model(&rows).
		Where("location_id = ?", locationID).
		Where("appointment_date = ?", date).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertAppointment is idempotent on ID: replaying the same payload returns
// the stored row, a different payload fails with ErrIdempotencyConflict.
func (r schedulingTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if appt.ID != uuid.Nil {
		var existing domain.Appointment
		err := r.tx.NewSelect().Model(&existing).Where("id = ?", appt.ID).Limit(1).Scan(ctx)
		switch err := translate(err); err {
		case nil:
			if !samePayload(existing, appt) {
				return domain.Appointment{}, store.ErrIdempotencyConflict
			}
			return existing, nil
		case store.ErrNotFound:
		default:
			return domain.Appointment{}, err
		}
	}

	if _, err := r.tx.NewInsert().Model(&appt).Returning("*").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.Appointment{}, store.ErrIdempotencyConflict
		}
		return domain.Appointment{}, translate(err)
	}
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

func (r schedulingTx) UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	res, err := r.tx.NewUpdate().
		Model(&appt).
		Column("location_id", "appointment_date", "start_time", "end_time", "appointment_type",
			"status", "reason", "notes", "updated_by", "updated_at").
		WherePK().
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, translate(err)
	}
	if err := expectAffected(res); err != nil {
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (r schedulingTx) ListOverrides(ctx context.Context, providerID string, from, to domain.Date) ([]domain.Override, error) {
	var rows []overrideRow
	err := r.tx.NewSelect().
		Model(&rows).
		Where("provider_id = ?", providerID).
		Where("override_date >= ?", from).
		Where("override_date <= ?", to).
		OrderExpr("override_date ASC, created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Override, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r schedulingTx) InsertOverride(ctx context.Context, o domain.Override) (domain.Override, error) {
	row := newOverrideRow(o)
	if _, err := r.tx.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
		return domain.Override{}, translate(err)
	}
	return row.toDomain(), nil
}

func (r schedulingTx) DeleteOverride(ctx context.Context, providerID string, id uuid.UUID) error {
	res, err := r.tx.NewDelete().
		Model((*overrideRow)(nil)).
		Where("id = ?", id).
		Where("provider_id = ?", providerID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r schedulingTx) ListWeeklySlots(ctx context.Context, locationID uuid.UUID) ([]domain.WeeklyAvailability, error) {
	var rows []domain.WeeklyAvailability
	err := r.tx.NewSelect().
		Model(&rows).
		Where("location_id = ?", locationID).
		OrderExpr("day_of_week ASC, start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r schedulingTx) InsertWeeklySlot(ctx context.Context, w domain.WeeklyAvailability) (domain.WeeklyAvailability, error) {
	if _, err := r.tx.NewInsert().Model(&w).Returning("*").Exec(ctx); err != nil {
		return domain.WeeklyAvailability{}, translate(err)
	}
	return w, nil
}

func (r schedulingTx) DeleteWeeklySlot(ctx context.Context, providerID string, id uuid.UUID) error {
	res, err := r.tx.NewDelete().
		Model((*domain.WeeklyAvailability)(nil)).
		Where("id = ?", id).
		Where("location_id IN (SELECT id FROM locations WHERE provider_id = ?)", providerID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r schedulingTx) GetDailyCap(ctx context.Context, locationID uuid.UUID, day domain.Weekday) (domain.DailyCap, error) {
	var c domain.DailyCap
	err := r.tx.NewSelect().
		Model(&c).
		Where("location_id = ?", locationID).
		Where("day_of_week = ?", day).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.DailyCap{}, translate(err)
	}
	return c, nil
}

func (r schedulingTx) ListDailyCaps(ctx context.Context, locationID uuid.UUID) ([]domain.DailyCap, error) {
	var rows []domain.DailyCap
	err := r.tx.NewSelect().
		Model(&rows).
		Where("location_id = ?", locationID).
		OrderExpr("day_of_week ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r schedulingTx) UpsertDailyCap(ctx context.Context, c domain.DailyCap) (domain.DailyCap, error) {
	_, err := r.tx.NewInsert().
		Model(&c).
		On("CONFLICT (location_id, day_of_week) DO UPDATE").
		Set("max_appointments = EXCLUDED.max_appointments").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.DailyCap{}, translate(err)
	}
	return c, nil
}

func (r schedulingTx) DeleteDailyCap(ctx context.Context, locationID uuid.UUID, day domain.Weekday) error {
	res, err := r.tx.NewDelete().
		Model((*domain.DailyCap)(nil)).
		Where("location_id = ?", locationID).
		Where("day_of_week = ?", day).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectAffected(res rowsAffecter) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
