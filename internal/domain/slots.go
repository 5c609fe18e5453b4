package domain

import (
	"sort"

	"github.com/google/uuid"
)

// Reason explains a slot decision. Callers surface it to users verbatim.
type Reason string

const (
	ReasonOverrideBlock       Reason = "override block"
	ReasonConflict            Reason = "conflict"
	ReasonOverrideOpen        Reason = "override open"
	ReasonWeeklySchedule      Reason = "weekly schedule"
	ReasonOutsideAvailability Reason = "outside availability"
	ReasonDailyCap            Reason = "daily cap reached"
)

type Decision struct {
	Available bool   `json:"available"`
	Reason    Reason `json:"reason"`
}

func available(r Reason) Decision   { return Decision{Available: true, Reason: r} }
func unavailable(r Reason) Decision { return Decision{Available: false, Reason: r} }

type SlotRequest struct {
	ProviderID           string
	LocationID           uuid.UUID
	Date                 Date
	Window               Window
	ExcludeAppointmentID uuid.UUID
}

func (r SlotRequest) Scope() BookingScope {
	return BookingScope{ProviderID: r.ProviderID, LocationID: r.LocationID, Date: r.Date}
}

// SlotFacts is everything the resolver looks at. Rows that do not belong to
// the request's provider, location, date or weekday are ignored, so callers
// may pass a superset.
type SlotFacts struct {
	Overrides    []Override
	Appointments []Appointment
	Weekly       []WeeklyAvailability
}

// CheckSlot decides whether req can be booked. The first matching rule wins:
// blocking override, conflicting appointment, open override, weekly rule.
// Blocking needs only overlap; granting needs full containment.
func CheckSlot(req SlotRequest, facts SlotFacts) Decision {
	day := WeekdayOf(req.Date)

	for _, o := range facts.Overrides {
		if o.Kind == OverrideBlocking && overrideApplies(o, req) && o.Time.Overlaps(req.Window) {
			return unavailable(ReasonOverrideBlock)
		}
	}

	if len(Conflicts(req, facts.Appointments)) > 0 {
		return unavailable(ReasonConflict)
	}

	for _, o := range facts.Overrides {
		if o.Kind == OverrideOpen && overrideApplies(o, req) && o.Time.Contains(req.Window) {
			return available(ReasonOverrideOpen)
		}
	}

	for _, w := range facts.Weekly {
		if w.LocationID == req.LocationID && w.DayOfWeek == day && w.Window().Contains(req.Window) {
			return available(ReasonWeeklySchedule)
		}
	}

	return unavailable(ReasonOutsideAvailability)
}

// Conflicts returns the occupying appointments in the request's scope whose
// window overlaps the request, other than the excluded one.
func Conflicts(req SlotRequest, appts []Appointment) []Appointment {
	var out []Appointment
	for _, a := range appts {
		if a.ID == req.ExcludeAppointmentID && a.ID != uuid.Nil {
			continue
		}
		if !a.Status.Occupying() || a.Scope() != req.Scope() {
			continue
		}
		if a.Window().Overlaps(req.Window) {
			out = append(out, a)
		}
	}
	return out
}

func overrideApplies(o Override, req SlotRequest) bool {
	return o.ProviderID == req.ProviderID && o.Date == req.Date && o.Location.Matches(req.LocationID)
}

// CountOccupying counts appointments holding a slot at location on date,
// skipping exclude.
func CountOccupying(appts []Appointment, locationID uuid.UUID, date Date, exclude uuid.UUID) int {
	n := 0
	for _, a := range appts {
		if a.LocationID != locationID || a.Date != date || !a.Status.Occupying() {
			continue
		}
		if exclude != uuid.Nil && a.ID == exclude {
			continue
		}
		n++
	}
	return n
}

// CapacityReached reports whether another booking would exceed the cap.
// A nil cap means unlimited.
func CapacityReached(limit *DailyCap, booked int) bool {
	return limit != nil && booked >= limit.MaxAppointments
}

// CandidateWindows lists windows of the given length, stepped by interval,
// that start inside any weekly row for the date's weekday or any open
// override for the location. Windows that would run past their source are
// dropped. The result is sorted and de-duplicated.
func CandidateWindows(req SlotRequest, facts SlotFacts, length, interval int) []Window {
	if length <= 0 || interval <= 0 {
		return nil
	}
	day := WeekdayOf(req.Date)

	var sources []Window
	for _, w := range facts.Weekly {
		if w.LocationID == req.LocationID && w.DayOfWeek == day {
			sources = append(sources, w.Window())
		}
	}
	for _, o := range facts.Overrides {
		if o.Kind != OverrideOpen || !overrideApplies(o, req) {
			continue
		}
		if win, ok := o.Time.Window(); ok {
			sources = append(sources, win)
		} else {
			sources = append(sources, Window{Start: 0, End: EndOfDay})
		}
	}

	seen := make(map[Window]struct{})
	var out []Window
	for _, src := range sources {
		for start := src.Start; start.Add(length) <= src.End; start = start.Add(interval) {
			w := Window{Start: start, End: start.Add(length)}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
