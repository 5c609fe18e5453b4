package store

import (
	"context"

	"github.com/google/uuid"

	"clinicsched/internal/domain"
)

// TxFunc is the body of one logical operation. Returning an error rolls the
// transaction back.
type TxFunc func(ctx context.Context, tx SchedulingTx) error

// Repository hands out scoped transactions. Implementations begin before fn,
// commit after it returns nil and roll back on any error or panic.
type Repository interface {
	// InTx runs fn in a read-write transaction.
	InTx(ctx context.Context, fn TxFunc) error
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn TxFunc) error

	ListAppointments(ctx context.Context, q AppointmentQuery) (AppointmentPage, error)
	ListFeedEvents(ctx context.Context, providerID string, from, to domain.Date) ([]domain.FeedEvent, error)
}

// SchedulingTx is the set of reads and writes available inside a transaction.
type SchedulingTx interface {
	// LockBookingScopes serializes bookers of the given scopes until the
	// transaction ends. Locks are taken in a fixed order.
	LockBookingScopes(ctx context.Context, scopes ...domain.BookingScope) error

	GetLocation(ctx context.Context, id uuid.UUID) (domain.Location, error)
	ListLocations(ctx context.Context, providerID string, includeInactive bool) ([]domain.Location, error)
	InsertLocation(ctx context.Context, loc domain.Location) (domain.Location, error)
	SetLocationActive(ctx context.Context, providerID string, id uuid.UUID, active bool) error

	// GetAppointment loads and row-locks an appointment.
	GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	// ListDayAppointments returns every appointment, in any status, for the
	// location on date.
	ListDayAppointments(ctx context.Context, locationID uuid.UUID, date domain.Date) ([]domain.Appointment, error)
	InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)

	ListOverrides(ctx context.Context, providerID string, from, to domain.Date) ([]domain.Override, error)
	InsertOverride(ctx context.Context, o domain.Override) (domain.Override, error)
	DeleteOverride(ctx context.Context, providerID string, id uuid.UUID) error

	ListWeeklySlots(ctx context.Context, locationID uuid.UUID) ([]domain.WeeklyAvailability, error)
	InsertWeeklySlot(ctx context.Context, w domain.WeeklyAvailability) (domain.WeeklyAvailability, error)
	// DeleteWeeklySlot removes a slot only if its location belongs to
	// providerID.
	DeleteWeeklySlot(ctx context.Context, providerID string, id uuid.UUID) error

	GetDailyCap(ctx context.Context, locationID uuid.UUID, day domain.Weekday) (domain.DailyCap, error)
	ListDailyCaps(ctx context.Context, locationID uuid.UUID) ([]domain.DailyCap, error)
	UpsertDailyCap(ctx context.Context, c domain.DailyCap) (domain.DailyCap, error)
	DeleteDailyCap(ctx context.Context, locationID uuid.UUID, day domain.Weekday) error
}
