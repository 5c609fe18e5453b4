package grpc

import (
	"strings"

	"github.com/google/uuid"

	schedv1 "clinicsched/internal/api/schedulingv1"
	"clinicsched/internal/domain"
)

// fieldError is a malformed request field. It maps to InvalidArgument before
// the service is reached.
type fieldError struct {
	field  string
	reason string
}

func (e *fieldError) Error() string { return e.field + " " + e.reason }

func parseID(field, s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, &fieldError{field: field, reason: "is required"}
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, &fieldError{field: field, reason: "must be a UUID"}
	}
	return id, nil
}

// parseOptionalID returns uuid.Nil for an empty value.
func parseOptionalID(field, s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, nil
	}
	return parseID(field, s)
}

func parseDate(field, s string) (domain.Date, error) {
	if strings.TrimSpace(s) == "" {
		return domain.Date{}, &fieldError{field: field, reason: "is required"}
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, &fieldError{field: field, reason: "must be YYYY-MM-DD"}
	}
	return d, nil
}

func parseClock(field, s string) (domain.ClockTime, error) {
	if strings.TrimSpace(s) == "" {
		return 0, &fieldError{field: field, reason: "is required"}
	}
	c, err := domain.ParseClockTime(s)
	if err != nil {
		return 0, &fieldError{field: field, reason: "must be HH:MM"}
	}
	return c, nil
}

func parseWindow(start, end string) (domain.Window, error) {
	s, err := parseClock("start", start)
	if err != nil {
		return domain.Window{}, err
	}
	e, err := parseClock("end", end)
	if err != nil {
		return domain.Window{}, err
	}
	return domain.Window{Start: s, End: e}, nil
}

func parseWeekday(s string) (domain.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return 0, &fieldError{field: "day_of_week", reason: "is required"}
	}
	w, err := domain.ParseWeekday(s)
	if err != nil {
		return 0, &fieldError{field: "day_of_week", reason: "must be 0-6 or a day name"}
	}
	return w, nil
}

// parseTimeScope reads an optional start/end pair. Both empty is a full day.
func parseTimeScope(start, end string) (domain.TimeScope, error) {
	if strings.TrimSpace(start) == "" && strings.TrimSpace(end) == "" {
		return domain.FullDay(), nil
	}
	w, err := parseWindow(start, end)
	if err != nil {
		return domain.TimeScope{}, err
	}
	return domain.WindowScope(w), nil
}

func toAppointment(a domain.Appointment) *schedv1.Appointment {
	return &schedv1.Appointment{
		ID:         a.ID.String(),
		PatientID:  a.PatientID,
		ProviderID: a.ProviderID,
		LocationID: a.LocationID.String(),
		Date:       a.Date.String(),
		Start:      a.StartTime.String(),
		End:        a.EndTime.String(),
		Type:       string(a.Type),
		Status:     string(a.Status),
		Reason:     a.Reason,
		Notes:      a.Notes,
		CreatedBy:  a.CreatedBy,
		UpdatedBy:  a.UpdatedBy,
		CreatedAt:  a.CreatedAt.UTC(),
		UpdatedAt:  a.UpdatedAt.UTC(),
	}
}

func toLocation(l domain.Location) *schedv1.Location {
	return &schedv1.Location{
		ID:         l.ID.String(),
		ProviderID: l.ProviderID,
		Name:       l.Name,
		Address:    l.Address,
		Active:     l.Active,
	}
}

func toWeeklySlot(w domain.WeeklyAvailability) *schedv1.WeeklySlot {
	return &schedv1.WeeklySlot{
		ID:         w.ID.String(),
		LocationID: w.LocationID.String(),
		DayOfWeek:  int(w.DayOfWeek),
		Start:      w.StartTime.String(),
		End:        w.EndTime.String(),
	}
}

func toOverride(o domain.Override) *schedv1.Override {
	out := &schedv1.Override{
		ID:         o.ID.String(),
		ProviderID: o.ProviderID,
		Date:       o.Date.String(),
		Kind:       string(o.Kind),
		Reason:     o.Reason,
	}
	if id, ok := o.Location.LocationID(); ok {
		out.LocationID = id.String()
	}
	if w, ok := o.Time.Window(); ok {
		out.Start = w.Start.String()
		out.End = w.End.String()
	}
	return out
}

func toDailyCap(c domain.DailyCap) *schedv1.DailyCap {
	return &schedv1.DailyCap{
		ID:              c.ID.String(),
		LocationID:      c.LocationID.String(),
		DayOfWeek:       int(c.DayOfWeek),
		MaxAppointments: c.MaxAppointments,
	}
}

func toFeedEvent(e domain.FeedEvent) *schedv1.FeedEvent {
	return &schedv1.FeedEvent{
		ID:           e.ID.String(),
		Title:        e.Title,
		Start:        e.Start,
		End:          e.End,
		Status:       string(e.Status),
		Type:         string(e.Type),
		LocationName: e.LocationName,
	}
}

func toTimeSlot(w domain.Window) *schedv1.TimeSlot {
	return &schedv1.TimeSlot{Start: w.Start.String(), End: w.End.String()}
}

func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
