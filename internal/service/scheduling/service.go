package scheduling

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinicsched/internal/audit"
	"clinicsched/internal/domain"
	"clinicsched/internal/store"
)

const (
	DefaultSlotInterval = 30
	DefaultAuditTimeout = 2 * time.Second
)

type Options struct {
	// SkipDailyCaps turns off capacity enforcement. Caps can still be
	// managed.
	SkipDailyCaps bool
	// SlotInterval is the step between open-slot candidates, in minutes.
	SlotInterval int
	Audit        audit.Sink
	// AuditTimeout bounds each sink call. Calls run off the request path.
	AuditTimeout time.Duration
	Logger       *slog.Logger
	Now          func() time.Time
}

type Service struct {
	repo         store.Repository
	audit        audit.Sink
	logger       *slog.Logger
	now          func() time.Time
	enforceCaps  bool
	slotInterval int
	auditTimeout time.Duration
	auditWG      sync.WaitGroup
}

func NewService(repo store.Repository, opts Options) *Service {
	s := &Service{
		repo:         repo,
		audit:        opts.Audit,
		logger:       opts.Logger,
		now:          opts.Now,
		enforceCaps:  !opts.SkipDailyCaps,
		slotInterval: opts.SlotInterval,
		auditTimeout: opts.AuditTimeout,
	}
	if s.audit == nil {
		s.audit = audit.Discard
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "service.scheduling")
	if s.now == nil {
		s.now = time.Now
	}
	if s.slotInterval <= 0 {
		s.slotInterval = DefaultSlotInterval
	}
	if s.auditTimeout <= 0 {
		s.auditTimeout = DefaultAuditTimeout
	}
	return s
}

func (s *Service) inTx(ctx context.Context, op string, fn store.TxFunc) error {
	return wrapStorage(op, s.repo.InTx(ctx, fn))
}

func (s *Service) view(ctx context.Context, op string, fn store.TxFunc) error {
	return wrapStorage(op, s.repo.View(ctx, fn))
}

func (s *Service) today() domain.Date {
	return domain.DateOf(s.now().UTC())
}

// record hands an audit event to the sink after commit. The sink runs in its
// own goroutine on a context detached from the caller's, so neither a slow nor
// a failing sink can fail or delay the operation.
func (s *Service) record(ctx context.Context, actor domain.Actor, action audit.Action, appt domain.Appointment, detail string) {
	e := audit.Event{
		ActorID:       actor.ID,
		ActorRole:     string(actor.Role),
		Action:        action,
		AppointmentID: appt.ID,
		ProviderID:    appt.ProviderID,
		Detail:        detail,
		At:            s.now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.auditTimeout)
	s.auditWG.Add(1)
	go func() {
		defer s.auditWG.Done()
		defer cancel()
		if err := s.audit.Record(ctx, e); err != nil {
			s.logger.WarnContext(ctx, "audit record failed",
				"action", string(action),
				"appointment_id", appt.ID.String(),
				"err", err,
			)
		}
	}()
}

// DrainAudit waits for in-flight audit records, or until ctx is done.
func (s *Service) DrainAudit(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.auditWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func validateActor(actor domain.Actor) error {
	if actor.ID == "" {
		return validationError("actor id is required")
	}
	switch actor.Role {
	case domain.RoleProvider, domain.RolePatient, domain.RoleAdmin:
		return nil
	}
	return validationError("actor role is required")
}

// canViewProvider reports whether actor may read providerID's calendar.
func canViewProvider(actor domain.Actor, providerID string) bool {
	return actor.Role == domain.RoleAdmin || (actor.Role == domain.RoleProvider && actor.ID == providerID)
}

// ownedLocation loads a location and checks it belongs to providerID. With
// requireActive, inactive locations are reported as not found.
func ownedLocation(ctx context.Context, tx store.SchedulingTx, providerID string, id uuid.UUID, requireActive bool) (domain.Location, error) {
	loc, err := tx.GetLocation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Location{}, notFound("location")
	}
	if err != nil {
		return domain.Location{}, err
	}
	if loc.ProviderID != providerID || (requireActive && !loc.Active) {
		return domain.Location{}, notFound("location")
	}
	return loc, nil
}

// dayFacts gathers everything the resolver needs for one booking scope.
func dayFacts(ctx context.Context, tx store.SchedulingTx, scope domain.BookingScope) (domain.SlotFacts, error) {
	overrides, err := tx.ListOverrides(ctx, scope.ProviderID, scope.Date, scope.Date)
	if err != nil {
		return domain.SlotFacts{}, err
	}
	appts, err := tx.ListDayAppointments(ctx, scope.LocationID, scope.Date)
	if err != nil {
		return domain.SlotFacts{}, err
	}
	weekly, err := tx.ListWeeklySlots(ctx, scope.LocationID)
	if err != nil {
		return domain.SlotFacts{}, err
	}
	return domain.SlotFacts{Overrides: overrides, Appointments: appts, Weekly: weekly}, nil
}

// dailyCap returns the cap for the scope's weekday, or nil when unlimited.
func dailyCap(ctx context.Context, tx store.SchedulingTx, scope domain.BookingScope) (*domain.DailyCap, error) {
	c, err := tx.GetDailyCap(ctx, scope.LocationID, domain.WeekdayOf(scope.Date))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) checkCapacity(ctx context.Context, tx store.SchedulingTx, scope domain.BookingScope, appts []domain.Appointment, exclude uuid.UUID) error {
	if !s.enforceCaps {
		return nil
	}
	limit, err := dailyCap(ctx, tx, scope)
	if err != nil {
		return err
	}
	booked := domain.CountOccupying(appts, scope.LocationID, scope.Date, exclude)
	if domain.CapacityReached(limit, booked) {
		return &CapacityExceededError{Max: limit.MaxAppointments, Booked: booked}
	}
	return nil
}

func (s *Service) rejectPast(d domain.Date) error {
	if d.Before(s.today()) {
		return validationError("date is in the past")
	}
	return nil
}
