package scheduling

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"clinicsched/internal/audit"
	"clinicsched/internal/domain"
	"clinicsched/internal/store"
)

const maxIdempotencyKeyLen = 256

type CreateInput struct {
	Actor          domain.Actor
	PatientID      string
	ProviderID     string
	LocationID     uuid.UUID
	Date           domain.Date
	Start          domain.ClockTime
	Type           domain.AppointmentType
	Reason         string
	Notes          string
	IdempotencyKey string
}

func (s *Service) CreateAppointment(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	if err := validateActor(in.Actor); err != nil {
		return domain.Appointment{}, err
	}
	if in.PatientID == "" {
		return domain.Appointment{}, validationError("patient_id is required")
	}
	if in.ProviderID == "" {
		return domain.Appointment{}, validationError("provider_id is required")
	}
	if in.LocationID == uuid.Nil {
		return domain.Appointment{}, validationError("location_id is required")
	}
	if in.Date.IsZero() {
		return domain.Appointment{}, validationError("date is required")
	}
	typ := domain.NormalizeType(string(in.Type))
	if typ == "" {
		return domain.Appointment{}, validationError("appointment type is required")
	}
	win := domain.Window{Start: in.Start, End: in.Start.Add(domain.DurationOf(typ))}
	if !win.Valid() {
		return domain.Appointment{}, validationError("appointment must start and end on the same day")
	}
	if err := s.rejectPast(in.Date); err != nil {
		return domain.Appointment{}, err
	}

	appt := domain.Appointment{
		PatientID:  in.PatientID,
		ProviderID: in.ProviderID,
		LocationID: in.LocationID,
		Date:       in.Date,
		StartTime:  win.Start,
		EndTime:    win.End,
		Type:       typ,
		Status:     domain.StatusConfirmed,
		Reason:     strings.TrimSpace(in.Reason),
		Notes:      strings.TrimSpace(in.Notes),
		CreatedBy:  in.Actor.ID,
		UpdatedBy:  in.Actor.ID,
	}
	if !in.Actor.CanAccess(appt) {
		return domain.Appointment{}, notFound("provider")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > maxIdempotencyKeyLen {
			return domain.Appointment{}, validationError("idempotency_key too long")
		}
		appt.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("clinicsched:create_appointment:"+in.Actor.ID+":"+key))
	}

	var (
		out      domain.Appointment
		replayed bool
	)
	err := s.inTx(ctx, "create appointment", func(ctx context.Context, tx store.SchedulingTx) error {
		if err := tx.LockBookingScopes(ctx, appt.Scope()); err != nil {
			return err
		}

		if appt.ID != uuid.Nil {
			existing, err := tx.GetAppointment(ctx, appt.ID)
			switch {
			case err == nil:
				if !sameBooking(existing, appt) {
					return validationError("idempotency key reused with a different request")
				}
				out, replayed = existing, true
				return nil
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
		}

		if _, err := ownedLocation(ctx, tx, appt.ProviderID, appt.LocationID, true); err != nil {
			return err
		}

		scope := appt.Scope()
		facts, err := dayFacts(ctx, tx, scope)
		if err != nil {
			return err
		}
		if err := s.checkCapacity(ctx, tx, scope, facts.Appointments, uuid.Nil); err != nil {
			return err
		}
		decision := domain.CheckSlot(domain.SlotRequest{
			ProviderID: appt.ProviderID,
			LocationID: appt.LocationID,
			Date:       appt.Date,
			Window:     win,
		}, facts)
		if !decision.Available {
			return &SlotUnavailableError{Reason: decision.Reason}
		}

		out, err = tx.InsertAppointment(ctx, appt)
		return bookingWriteError(err)
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	if !replayed {
		s.record(ctx, in.Actor, audit.ActionCreate, out, "")
	}
	return out, nil
}

func sameBooking(a, b domain.Appointment) bool {
	return a.PatientID == b.PatientID &&
		a.ProviderID == b.ProviderID &&
		a.LocationID == b.LocationID &&
		a.Date == b.Date &&
		a.StartTime == b.StartTime &&
		a.Type == b.Type
}

// bookingWriteError translates store sentinels raised by appointment writes.
func bookingWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrConflict):
		return &SlotUnavailableError{Reason: domain.ReasonConflict}
	case errors.Is(err, store.ErrIdempotencyConflict):
		return validationError("idempotency key reused with a different request")
	case errors.Is(err, store.ErrNotFound):
		return notFound("appointment")
	}
	return err
}

// loadForChange row-locks an appointment the actor may modify.
func loadForChange(ctx context.Context, tx store.SchedulingTx, actor domain.Actor, id uuid.UUID) (domain.Appointment, error) {
	appt, err := tx.GetAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Appointment{}, notFound("appointment")
	}
	if err != nil {
		return domain.Appointment{}, err
	}
	if !actor.CanAccess(appt) {
		return domain.Appointment{}, notFound("appointment")
	}
	return appt, nil
}

type RescheduleInput struct {
	Actor         domain.Actor
	AppointmentID uuid.UUID
	Date          domain.Date
	Start         domain.ClockTime
	// LocationID moves the appointment when set.
	LocationID uuid.UUID
}

func (s *Service) RescheduleAppointment(ctx context.Context, in RescheduleInput) (domain.Appointment, error) {
	if err := validateActor(in.Actor); err != nil {
		return domain.Appointment{}, err
	}
	if in.AppointmentID == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	if in.Date.IsZero() {
		return domain.Appointment{}, validationError("date is required")
	}
	if !in.Start.Valid() {
		return domain.Appointment{}, validationError("invalid start time")
	}
	if err := s.rejectPast(in.Date); err != nil {
		return domain.Appointment{}, err
	}

	var out domain.Appointment
	err := s.inTx(ctx, "reschedule appointment", func(ctx context.Context, tx store.SchedulingTx) error {
		current, err := loadForChange(ctx, tx, in.Actor, in.AppointmentID)
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			return &ImmutableStateError{Status: current.Status}
		}

		target := current
		target.Date = in.Date
		if in.LocationID != uuid.Nil {
			target.LocationID = in.LocationID
		}
		win := domain.Window{Start: in.Start, End: in.Start.Add(domain.DurationOf(current.Type))}
		if !win.Valid() {
			return validationError("appointment must start and end on the same day")
		}
		target.StartTime, target.EndTime = win.Start, win.End
		target.Status = domain.StatusConfirmed
		target.UpdatedBy = in.Actor.ID

		if err := tx.LockBookingScopes(ctx, current.Scope(), target.Scope()); err != nil {
			return err
		}
		if _, err := ownedLocation(ctx, tx, target.ProviderID, target.LocationID, true); err != nil {
			return err
		}

		scope := target.Scope()
		facts, err := dayFacts(ctx, tx, scope)
		if err != nil {
			return err
		}
		if scope != current.Scope() {
			if err := s.checkCapacity(ctx, tx, scope, facts.Appointments, current.ID); err != nil {
				return err
			}
		}
		decision := domain.CheckSlot(domain.SlotRequest{
			ProviderID:           target.ProviderID,
			LocationID:           target.LocationID,
			Date:                 target.Date,
			Window:               win,
			ExcludeAppointmentID: current.ID,
		}, facts)
		if !decision.Available {
			return &SlotUnavailableError{Reason: decision.Reason}
		}

		out, err = tx.UpdateAppointment(ctx, target)
		return bookingWriteError(err)
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	s.record(ctx, in.Actor, audit.ActionReschedule, out, out.Date.String()+" "+out.Window().String())
	return out, nil
}

func (s *Service) CancelAppointment(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Appointment, error) {
	if err := validateActor(actor); err != nil {
		return domain.Appointment{}, err
	}
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}

	var out domain.Appointment
	err := s.inTx(ctx, "cancel appointment", func(ctx context.Context, tx store.SchedulingTx) error {
		appt, err := loadForChange(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if appt.Status.Terminal() {
			return &ImmutableStateError{Status: appt.Status}
		}
		appt.Status = domain.StatusCanceled
		appt.UpdatedBy = actor.ID
		out, err = tx.UpdateAppointment(ctx, appt)
		return bookingWriteError(err)
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	s.record(ctx, actor, audit.ActionCancel, out, "")
	return out, nil
}

// SetStatus moves an appointment to any status. Reviving a canceled
// appointment re-checks that its slot is still free.
func (s *Service) SetStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	if err := validateActor(actor); err != nil {
		return domain.Appointment{}, err
	}
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	status, err := domain.ParseStatus(string(status))
	if err != nil {
		return domain.Appointment{}, validationError(err.Error())
	}

	var (
		out  domain.Appointment
		from domain.AppointmentStatus
	)
	err = s.inTx(ctx, "set appointment status", func(ctx context.Context, tx store.SchedulingTx) error {
		appt, err := loadForChange(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		from = appt.Status

		if !appt.Status.Occupying() && status.Occupying() {
			scope := appt.Scope()
			if err := tx.LockBookingScopes(ctx, scope); err != nil {
				return err
			}
			appts, err := tx.ListDayAppointments(ctx, appt.LocationID, appt.Date)
			if err != nil {
				return err
			}
			req := domain.SlotRequest{
				ProviderID:           appt.ProviderID,
				LocationID:           appt.LocationID,
				Date:                 appt.Date,
				Window:               appt.Window(),
				ExcludeAppointmentID: appt.ID,
			}
			if len(domain.Conflicts(req, appts)) > 0 {
				return &SlotUnavailableError{Reason: domain.ReasonConflict}
			}
			if err := s.checkCapacity(ctx, tx, scope, appts, appt.ID); err != nil {
				return err
			}
		}

		appt.Status = status
		appt.UpdatedBy = actor.ID
		out, err = tx.UpdateAppointment(ctx, appt)
		return bookingWriteError(err)
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	s.record(ctx, actor, audit.ActionStatus, out, string(from)+" -> "+string(status))
	return out, nil
}

// UpdateNotes replaces the notes of an appointment in any status.
func (s *Service) UpdateNotes(ctx context.Context, actor domain.Actor, id uuid.UUID, notes string) (domain.Appointment, error) {
	if err := validateActor(actor); err != nil {
		return domain.Appointment{}, err
	}
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}

	var out domain.Appointment
	err := s.inTx(ctx, "update appointment notes", func(ctx context.Context, tx store.SchedulingTx) error {
		appt, err := loadForChange(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		appt.Notes = strings.TrimSpace(notes)
		appt.UpdatedBy = actor.ID
		out, err = tx.UpdateAppointment(ctx, appt)
		return bookingWriteError(err)
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	s.record(ctx, actor, audit.ActionNotes, out, "")
	return out, nil
}

func (s *Service) GetAppointment(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Appointment, error) {
	if err := validateActor(actor); err != nil {
		return domain.Appointment{}, err
	}
	var out domain.Appointment
	err := s.view(ctx, "get appointment", func(ctx context.Context, tx store.SchedulingTx) error {
		var err error
		out, err = loadForChange(ctx, tx, actor, id)
		return err
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

// ListAppointments pages through a provider's appointments. Patients only ever
// see their own, across providers when ProviderID is empty.
func (s *Service) ListAppointments(ctx context.Context, actor domain.Actor, q store.AppointmentQuery) (store.AppointmentPage, error) {
	if err := validateActor(actor); err != nil {
		return store.AppointmentPage{}, err
	}
	switch {
	case actor.Role == domain.RolePatient:
		q.Filter.PatientID = actor.ID
	case q.ProviderID == "":
		return store.AppointmentPage{}, validationError("provider_id is required")
	case !canViewProvider(actor, q.ProviderID):
		return store.AppointmentPage{}, notFound("provider")
	}
	f := q.Filter
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return store.AppointmentPage{}, validationError("to must not be before from")
	}
	for _, st := range f.Statuses {
		if _, err := domain.ParseStatus(string(st)); err != nil {
			return store.AppointmentPage{}, validationError(err.Error())
		}
	}
	if _, err := store.ParseSortField(string(q.Sort)); err != nil {
		return store.AppointmentPage{}, validationError(err.Error())
	}
	if q.PageSize > store.MaxPageSize {
		return store.AppointmentPage{}, validationError("page size must be at most 100")
	}

	page, err := s.repo.ListAppointments(ctx, q.Normalize())
	if err != nil {
		return store.AppointmentPage{}, wrapStorage("list appointments", err)
	}
	return page, nil
}

const maxFeedDays = 366

// FeedEvents lists calendar entries for dates in [from, to).
func (s *Service) FeedEvents(ctx context.Context, actor domain.Actor, providerID string, from, to domain.Date) ([]domain.FeedEvent, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if providerID == "" {
		return nil, validationError("provider_id is required")
	}
	if from.IsZero() || to.IsZero() {
		return nil, validationError("start and end are required")
	}
	if !from.Before(to) {
		return nil, validationError("end must be after start")
	}
	if to.After(from.AddDays(maxFeedDays)) {
		return nil, validationError("feed range is limited to one year")
	}
	if !canViewProvider(actor, providerID) {
		return nil, notFound("provider")
	}

	events, err := s.repo.ListFeedEvents(ctx, providerID, from, to)
	if err != nil {
		return nil, wrapStorage("feed events", err)
	}
	return events, nil
}
