package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Location struct {
	bun.BaseModel `bun:"table:locations,alias:l"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	ProviderID string    `bun:"provider_id,notnull"`
	Name       string    `bun:"name,notnull"`
	Address    string    `bun:"address,nullzero"`
	Active     bool      `bun:"active,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// Bookable reports whether providerID may schedule against l.
func (l Location) Bookable(providerID string) bool {
	return l.Active && l.ProviderID == providerID
}

func (l *Location) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if l.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			l.ID = id
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		if l.UpdatedAt.IsZero() {
			l.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		l.UpdatedAt = now
	}
	return nil
}

// WeeklyAvailability is a recurring open window at one location.
type WeeklyAvailability struct {
	bun.BaseModel `bun:"table:weekly_availability,alias:w"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	LocationID uuid.UUID `bun:"location_id,notnull,type:uuid"`
	DayOfWeek  Weekday   `bun:"day_of_week,notnull"`
	StartTime  ClockTime `bun:"start_time,notnull,type:time"`
	EndTime    ClockTime `bun:"end_time,notnull,type:time"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

func (w WeeklyAvailability) Window() Window {
	return Window{Start: w.StartTime, End: w.EndTime}
}

func (w *WeeklyAvailability) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if w.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			w.ID = id
		}
		if w.CreatedAt.IsZero() {
			w.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}

// WeeklySlotsOverlap is the strict overlap rule for weekly rows: same location
// and day, and newStart < existingEnd && newEnd > existingStart.
func WeeklySlotsOverlap(a, b WeeklyAvailability) bool {
	return a.LocationID == b.LocationID && a.DayOfWeek == b.DayOfWeek && a.Window().Overlaps(b.Window())
}

// DailyCap limits the number of occupying appointments per location and
// weekday.
type DailyCap struct {
	bun.BaseModel `bun:"table:daily_caps,alias:c"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	ProviderID      string    `bun:"provider_id,notnull"`
	LocationID      uuid.UUID `bun:"location_id,notnull,type:uuid"`
	DayOfWeek       Weekday   `bun:"day_of_week,notnull"`
	MaxAppointments int       `bun:"max_appointments,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

func (c *DailyCap) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if c.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		c.ID = id
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}
