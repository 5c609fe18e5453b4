package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCanceled    AppointmentStatus = "canceled"
	StatusNoShow      AppointmentStatus = "no_show"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

var AllStatuses = []AppointmentStatus{
	StatusConfirmed,
	StatusCompleted,
	StatusCanceled,
	StatusNoShow,
	StatusRescheduled,
}

func ParseStatus(s string) (AppointmentStatus, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if norm == "cancelled" {
		norm = string(StatusCanceled)
	}
	for _, st := range AllStatuses {
		if string(st) == norm {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", s)
}

// Terminal statuses freeze the appointment against reschedule and cancel.
// Rescheduled is a marker only and is not terminal.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCanceled, StatusNoShow:
		return true
	}
	return false
}

// Occupying reports whether an appointment in this status holds its slot.
func (s AppointmentStatus) Occupying() bool {
	return s != StatusCanceled
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments,alias:a"`

	ID         uuid.UUID         `bun:"id,pk,type:uuid"`
	PatientID  string            `bun:"patient_id,notnull"`
	ProviderID string            `bun:"provider_id,notnull"`
	LocationID uuid.UUID         `bun:"location_id,notnull,type:uuid"`
	Date       Date              `bun:"appointment_date,notnull,type:date"`
	StartTime  ClockTime         `bun:"start_time,notnull,type:time"`
	EndTime    ClockTime         `bun:"end_time,notnull,type:time"`
	Type       AppointmentType   `bun:"appointment_type,notnull"`
	Status     AppointmentStatus `bun:"status,notnull"`
	Reason     string            `bun:"reason,nullzero"`
	Notes      string            `bun:"notes,nullzero"`
	CreatedBy  string            `bun:"created_by,notnull"`
	UpdatedBy  string            `bun:"updated_by,notnull"`
	CreatedAt  time.Time         `bun:"created_at,notnull"`
	UpdatedAt  time.Time         `bun:"updated_at,notnull"`
}

func (a Appointment) Window() Window {
	return Window{Start: a.StartTime, End: a.EndTime}
}

func (a Appointment) Scope() BookingScope {
	return BookingScope{ProviderID: a.ProviderID, LocationID: a.LocationID, Date: a.Date}
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

// BookingScope is the unit of booking serialization: one provider's calendar
// at one location on one date.
type BookingScope struct {
	ProviderID string
	LocationID uuid.UUID
	Date       Date
}

func (s BookingScope) Key() string {
	return "booking:" + s.ProviderID + ":" + s.LocationID.String() + ":" + s.Date.String()
}

// FeedEvent is one calendar entry for a provider's calendar view.
type FeedEvent struct {
	ID           uuid.UUID         `json:"id"`
	Start        time.Time         `json:"start"`
	End          time.Time         `json:"end"`
	Status       AppointmentStatus `json:"status"`
	Type         AppointmentType   `json:"type"`
	LocationName string            `json:"location_name"`
	Title        string            `json:"title"`
}

func NewFeedEvent(a Appointment, locationName string) FeedEvent {
	title := a.Type.Label()
	if locationName != "" {
		title += " @ " + locationName
	}
	return FeedEvent{
		ID:           a.ID,
		Start:        a.StartTime.On(a.Date),
		End:          a.EndTime.On(a.Date),
		Status:       a.Status,
		Type:         a.Type,
		LocationName: locationName,
		Title:        title,
	}
}
