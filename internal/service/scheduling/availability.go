package scheduling

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"clinicsched/internal/domain"
	"clinicsched/internal/store"
)

type CheckInput struct {
	ProviderID           string
	LocationID           uuid.UUID
	Date                 domain.Date
	Window               domain.Window
	ExcludeAppointmentID uuid.UUID
}

// CheckAvailability runs the slot resolver without booking anything.
func (s *Service) CheckAvailability(ctx context.Context, in CheckInput) (domain.Decision, error) {
	if in.ProviderID == "" || in.LocationID == uuid.Nil {
		return domain.Decision{}, validationError("provider_id and location_id are required")
	}
	if in.Date.IsZero() {
		return domain.Decision{}, validationError("date is required")
	}
	if !in.Window.Valid() {
		return domain.Decision{}, validationError("start must be before end")
	}

	var out domain.Decision
	err := s.view(ctx, "check availability", func(ctx context.Context, tx store.SchedulingTx) error {
		if _, err := ownedLocation(ctx, tx, in.ProviderID, in.LocationID, true); err != nil {
			return err
		}
		req := domain.SlotRequest{
			ProviderID:           in.ProviderID,
			LocationID:           in.LocationID,
			Date:                 in.Date,
			Window:               in.Window,
			ExcludeAppointmentID: in.ExcludeAppointmentID,
		}
		facts, err := dayFacts(ctx, tx, req.Scope())
		if err != nil {
			return err
		}
		out = domain.CheckSlot(req, facts)
		return nil
	})
	if err != nil {
		return domain.Decision{}, err
	}
	return out, nil
}

type OpenSlots struct {
	Windows    []domain.Window
	CapReached bool
}

// ListOpenSlots returns every bookable window of the type's length on date.
// Past dates have none.
func (s *Service) ListOpenSlots(ctx context.Context, providerID string, locationID uuid.UUID, date domain.Date, typ domain.AppointmentType) (OpenSlots, error) {
	if providerID == "" || locationID == uuid.Nil {
		return OpenSlots{}, validationError("provider_id and location_id are required")
	}
	if date.IsZero() {
		return OpenSlots{}, validationError("date is required")
	}
	if date.Before(s.today()) {
		return OpenSlots{Windows: []domain.Window{}}, nil
	}
	typ = domain.NormalizeType(string(typ))
	length := domain.DurationOf(typ)

	out := OpenSlots{Windows: []domain.Window{}}
	err := s.view(ctx, "list open slots", func(ctx context.Context, tx store.SchedulingTx) error {
		if _, err := ownedLocation(ctx, tx, providerID, locationID, true); err != nil {
			return err
		}
		scope := domain.BookingScope{ProviderID: providerID, LocationID: locationID, Date: date}
		facts, err := dayFacts(ctx, tx, scope)
		if err != nil {
			return err
		}
		var capErr *CapacityExceededError
		if err := s.checkCapacity(ctx, tx, scope, facts.Appointments, uuid.Nil); errors.As(err, &capErr) {
			out.CapReached = true
			return nil
		} else if err != nil {
			return err
		}

		req := domain.SlotRequest{ProviderID: providerID, LocationID: locationID, Date: date}
		for _, w := range domain.CandidateWindows(req, facts, length, s.slotInterval) {
			req.Window = w
			if domain.CheckSlot(req, facts).Available {
				out.Windows = append(out.Windows, w)
			}
		}
		return nil
	})
	if err != nil {
		return OpenSlots{}, err
	}
	return out, nil
}

func (s *Service) AddLocation(ctx context.Context, providerID, name, address string) (domain.Location, error) {
	name = strings.TrimSpace(name)
	if providerID == "" {
		return domain.Location{}, validationError("provider_id is required")
	}
	if name == "" {
		return domain.Location{}, validationError("name is required")
	}

	var out domain.Location
	err := s.inTx(ctx, "add location", func(ctx context.Context, tx store.SchedulingTx) error {
		var err error
		out, err = tx.InsertLocation(ctx, domain.Location{
			ProviderID: providerID,
			Name:       name,
			Address:    strings.TrimSpace(address),
			Active:     true,
		})
		return err
	})
	if err != nil {
		return domain.Location{}, err
	}
	return out, nil
}

// DeactivateLocation hides a location from booking. Its appointments stay.
func (s *Service) DeactivateLocation(ctx context.Context, providerID string, id uuid.UUID) error {
	if providerID == "" || id == uuid.Nil {
		return validationError("provider_id and location_id are required")
	}
	return s.inTx(ctx, "deactivate location", func(ctx context.Context, tx store.SchedulingTx) error {
		err := tx.SetLocationActive(ctx, providerID, id, false)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("location")
		}
		return err
	})
}

func (s *Service) ListLocations(ctx context.Context, providerID string, includeInactive bool) ([]domain.Location, error) {
	if providerID == "" {
		return nil, validationError("provider_id is required")
	}
	var out []domain.Location
	err := s.view(ctx, "list locations", func(ctx context.Context, tx store.SchedulingTx) error {
		var err error
		out, err = tx.ListLocations(ctx, providerID, includeInactive)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) AddWeeklySlot(ctx context.Context, providerID string, locationID uuid.UUID, day domain.Weekday, win domain.Window) (domain.WeeklyAvailability, error) {
	if providerID == "" || locationID == uuid.Nil {
		return domain.WeeklyAvailability{}, validationError("provider_id and location_id are required")
	}
	if !day.Valid() {
		return domain.WeeklyAvailability{}, validationError("day_of_week must be between 0 and 6")
	}
	if !win.Valid() {
		return domain.WeeklyAvailability{}, validationError("start must be before end")
	}

	slot := domain.WeeklyAvailability{LocationID: locationID, DayOfWeek: day, StartTime: win.Start, EndTime: win.End}
	var out domain.WeeklyAvailability
	err := s.inTx(ctx, "add weekly slot", func(ctx context.Context, tx store.SchedulingTx) error {
		if _, err := ownedLocation(ctx, tx, providerID, locationID, true); err != nil {
			return err
		}
		existing, err := tx.ListWeeklySlots(ctx, locationID)
		if err != nil {
			return err
		}
		for _, w := range existing {
			if domain.WeeklySlotsOverlap(w, slot) {
				return &OverlapError{msg: "weekly slot overlaps " + w.Window().String() + " on " + day.String()}
			}
		}
		out, err = tx.InsertWeeklySlot(ctx, slot)
		if errors.Is(err, store.ErrConflict) {
			return &OverlapError{msg: "weekly slot overlaps an existing slot on " + day.String()}
		}
		return err
	})
	if err != nil {
		return domain.WeeklyAvailability{}, err
	}
	return out, nil
}

func (s *Service) DeleteWeeklySlot(ctx context.Context, providerID string, id uuid.UUID) error {
	if providerID == "" || id == uuid.Nil {
		return validationError("provider_id and slot id are required")
	}
	return s.inTx(ctx, "delete weekly slot", func(ctx context.Context, tx store.SchedulingTx) error {
		err := tx.DeleteWeeklySlot(ctx, providerID, id)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("weekly slot")
		}
		return err
	})
}

func (s *Service) ListWeeklySlots(ctx context.Context, providerID string, locationID uuid.UUID) ([]domain.WeeklyAvailability, error) {
	if providerID == "" || locationID == uuid.Nil {
		return nil, validationError("provider_id and location_id are required")
	}
	var out []domain.WeeklyAvailability
	err := s.view(ctx, "list weekly slots", func(ctx context.Context, tx store.SchedulingTx) error {
		if _, err := ownedLocation(ctx, tx, providerID, locationID, false); err != nil {
			return err
		}
		var err error
		out, err = tx.ListWeeklySlots(ctx, locationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type OverrideInput struct {
	ProviderID string
	Location   domain.LocationScope
	Date       domain.Date
	Time       domain.TimeScope
	Kind       domain.OverrideKind
	Reason     string
}

func (s *Service) AddOverride(ctx context.Context, in OverrideInput) (domain.Override, error) {
	if in.ProviderID == "" {
		return domain.Override{}, validationError("provider_id is required")
	}
	if in.Date.IsZero() {
		return domain.Override{}, validationError("date is required")
	}
	if w, ok := in.Time.Window(); ok && !w.Valid() {
		return domain.Override{}, validationError("start must be before end")
	}
	kind, err := domain.ParseOverrideKind(string(in.Kind))
	if err != nil {
		return domain.Override{}, validationError(err.Error())
	}

	o := domain.Override{
		ProviderID: in.ProviderID,
		Location:   in.Location,
		Date:       in.Date,
		Time:       in.Time,
		Kind:       kind,
		Reason:     strings.TrimSpace(in.Reason),
	}
	var out domain.Override
	err = s.inTx(ctx, "add override", func(ctx context.Context, tx store.SchedulingTx) error {
		if id, ok := o.Location.LocationID(); ok {
			if _, err := ownedLocation(ctx, tx, o.ProviderID, id, true); err != nil {
				return err
			}
		}
		existing, err := tx.ListOverrides(ctx, o.ProviderID, o.Date, o.Date)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if domain.OverridesConflict(e, o) {
				return &OverlapError{msg: "override overlaps an existing " + string(e.Kind) + " override (" + e.Time.String() + ", " + e.Location.String() + ")"}
			}
		}
		out, err = tx.InsertOverride(ctx, o)
		return err
	})
	if err != nil {
		return domain.Override{}, err
	}
	return out, nil
}

func (s *Service) DeleteOverride(ctx context.Context, providerID string, id uuid.UUID) error {
	if providerID == "" || id == uuid.Nil {
		return validationError("provider_id and override id are required")
	}
	return s.inTx(ctx, "delete override", func(ctx context.Context, tx store.SchedulingTx) error {
		err := tx.DeleteOverride(ctx, providerID, id)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("override")
		}
		return err
	})
}

// ListOverrides returns overrides dated from..to inclusive.
func (s *Service) ListOverrides(ctx context.Context, providerID string, from, to domain.Date) ([]domain.Override, error) {
	if providerID == "" {
		return nil, validationError("provider_id is required")
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, validationError("a valid date range is required")
	}
	var out []domain.Override
	err := s.view(ctx, "list overrides", func(ctx context.Context, tx store.SchedulingTx) error {
		var err error
		out, err = tx.ListOverrides(ctx, providerID, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) SetDailyCap(ctx context.Context, providerID string, locationID uuid.UUID, day domain.Weekday, maxAppointments int) (domain.DailyCap, error) {
	if providerID == "" || locationID == uuid.Nil {
		return domain.DailyCap{}, validationError("provider_id and location_id are required")
	}
	if !day.Valid() {
		return domain.DailyCap{}, validationError("day_of_week must be between 0 and 6")
	}
	if maxAppointments < 0 {
		return domain.DailyCap{}, validationError("max_appointments must not be negative")
	}

	var out domain.DailyCap
	err := s.inTx(ctx, "set daily cap", func(ctx context.Context, tx store.SchedulingTx) error {
		if _, err := ownedLocation(ctx, tx, providerID, locationID, true); err != nil {
			return err
		}
		var err error
		out, err = tx.UpsertDailyCap(ctx, domain.DailyCap{
			ProviderID:      providerID,
			LocationID:      locationID,
			DayOfWeek:       day,
			MaxAppointments: maxAppointments,
		})
		return err
	})
	if err != nil {
		return domain.DailyCap{}, err
	}
	return out, nil
}

// ClearDailyCap removes the cap for a weekday. Clearing a missing cap is not
// an error.
func (s *Service) ClearDailyCap(ctx context.Context, providerID string, locationID uuid.UUID, day domain.Weekday) error {
	if providerID == "" || locationID == uuid.Nil {
		return validationError("provider_id and location_id are required")
	}
	if !day.Valid() {
		return validationError("day_of_week must be between 0 and 6")
	}
	return s.inTx(ctx, "clear daily cap", func(ctx context.Context, tx store.SchedulingTx) error {
		if _, err := ownedLocation(ctx, tx, providerID, locationID, false); err != nil {
			return err
		}
		err := tx.DeleteDailyCap(ctx, locationID, day)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
}

func (s *Service) ListDailyCaps(ctx context.Context, providerID string, locationID uuid.UUID) ([]domain.DailyCap, error) {
	if providerID == "" || locationID == uuid.Nil {
		return nil, validationError("provider_id and location_id are required")
	}
	var out []domain.DailyCap
	err := s.view(ctx, "list daily caps", func(ctx context.Context, tx store.SchedulingTx) error {
		if _, err := ownedLocation(ctx, tx, providerID, locationID, false); err != nil {
			return err
		}
		var err error
		out, err = tx.ListDailyCaps(ctx, locationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
