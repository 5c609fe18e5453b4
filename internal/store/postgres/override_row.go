package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"clinicsched/internal/domain"
)

// overrideRow is the table shape of an override. A NULL location means all of
// the provider's locations; NULL times mean the full day.
type overrideRow struct {
	bun.BaseModel `bun:"table:availability_overrides,alias:o"`

	ID         uuid.UUID           `bun:"id,pk,type:uuid"`
	ProviderID string              `bun:"provider_id,notnull"`
	LocationID uuid.NullUUID       `bun:"location_id,type:uuid"`
	Date       domain.Date         `bun:"override_date,notnull,type:date"`
	StartTime  *domain.ClockTime   `bun:"start_time,type:time"`
	EndTime    *domain.ClockTime   `bun:"end_time,type:time"`
	Kind       domain.OverrideKind `bun:"kind,notnull"`
	Reason     string              `bun:"reason,nullzero"`
	CreatedAt  time.Time           `bun:"created_at,notnull"`
}

func newOverrideRow(o domain.Override) overrideRow {
	row := overrideRow{
		ID:         o.ID,
		ProviderID: o.ProviderID,
		Date:       o.Date,
		Kind:       o.Kind,
		Reason:     o.Reason,
		CreatedAt:  o.CreatedAt,
	}
	if id, ok := o.Location.LocationID(); ok {
		row.LocationID = uuid.NullUUID{UUID: id, Valid: true}
	}
	if w, ok := o.Time.Window(); ok {
		start, end := w.Start, w.End
		row.StartTime, row.EndTime = &start, &end
	}
	return row
}

func (row overrideRow) toDomain() domain.Override {
	o := domain.Override{
		ID:         row.ID,
		ProviderID: row.ProviderID,
		Location:   domain.AllLocations(),
		Date:       row.Date,
		Time:       domain.FullDay(),
		Kind:       row.Kind,
		Reason:     row.Reason,
		CreatedAt:  row.CreatedAt,
	}
	if row.LocationID.Valid {
		o.Location = domain.SpecificLocation(row.LocationID.UUID)
	}
	if row.StartTime != nil && row.EndTime != nil {
		o.Time = domain.WindowScope(domain.Window{Start: *row.StartTime, End: *row.EndTime})
	}
	return o
}

func (row *overrideRow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if row.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			row.ID = id
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}
