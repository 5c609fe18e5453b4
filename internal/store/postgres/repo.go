package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"clinicsched/internal/domain"
	"clinicsched/internal/store"
)

type Repo struct {
	db *bun.DB
}

func NewRepo(db *bun.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) InTx(ctx context.Context, fn store.TxFunc) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, schedulingTx{tx: tx})
	})
}

func (r *Repo) View(ctx context.Context, fn store.TxFunc) error {
	opts := &sql.TxOptions{ReadOnly: true}
	return r.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, schedulingTx{tx: tx, readOnly: true})
	})
}

var sortColumns = map[store.SortField]string{
	store.SortByDate:     "a.appointment_date",
	store.SortByPatient:  "a.patient_id",
	store.SortByType:     "a.appointment_type",
	store.SortByStatus:   "a.status",
	store.SortByLocation: "l.name",
	store.SortByCreated:  "a.created_at",
}

func (r *Repo) ListAppointments(ctx context.Context, q store.AppointmentQuery) (store.AppointmentPage, error) {
	q = q.Normalize()

	var rows []domain.Appointment
	sel := r.db.NewSelect().
		Model(&rows).
		Join("JOIN locations AS l ON l.id = a.location_id")
	if q.ProviderID != "" {
		sel = sel.Where("a.provider_id = ?", q.ProviderID)
	}

	f := q.Filter
	if f.PatientID != "" {
		sel = sel.Where("a.patient_id = ?", f.PatientID)
	}
	if f.From != nil {
		sel = sel.Where("a.appointment_date >= ?", *f.From)
	}
	if f.To != nil {
		sel = sel.Where("a.appointment_date <= ?", *f.To)
	}
	if len(f.Statuses) > 0 {
		sel = sel.Where("a.status IN (?)", bun.In(f.Statuses))
	}
	if f.Type != "" {
		sel = sel.Where("a.appointment_type = ?", f.Type)
	}
	if f.LocationID != uuid.Nil {
		sel = sel.Where("a.location_id = ?", f.LocationID)
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		sel = sel.WhereGroup(" AND ", func(g *bun.SelectQuery) *bun.SelectQuery {
			return g.
				Where("a.reason ILIKE ?", pattern).
				WhereOr("a.notes ILIKE ?", pattern).
				WhereOr("l.name ILIKE ?", pattern)
		})
	}

	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	col, ok := sortColumns[q.Sort]
	if !ok {
		col = sortColumns[store.SortByDate]
	}
	sel = sel.OrderExpr("? "+dir, bun.Safe(col))
	if q.Sort == store.SortByDate {
		sel = sel.OrderExpr("a.start_time " + dir)
	}
	sel = sel.OrderExpr("a.id ASC").Limit(q.PageSize).Offset(q.Offset())

	total, err := sel.ScanAndCount(ctx)
	if err != nil {
		return store.AppointmentPage{}, err
	}
	if rows == nil {
		rows = []domain.Appointment{}
	}
	return store.AppointmentPage{Items: rows, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// ListFeedEvents returns non-canceled appointments with from <= date < to.
func (r *Repo) ListFeedEvents(ctx context.Context, providerID string, from, to domain.Date) ([]domain.FeedEvent, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("provider_id = ?", providerID).
		Where("status <> ?", domain.StatusCanceled).
		Where("appointment_date >= ?", from).
		Where("appointment_date < ?", to).
		OrderExpr("appointment_date ASC, start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.FeedEvent{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	seen := make(map[uuid.UUID]struct{})
	for _, a := range rows {
		if _, ok := seen[a.LocationID]; !ok {
			seen[a.LocationID] = struct{}{}
			ids = append(ids, a.LocationID)
		}
	}
	var locs []domain.Location
	if err := r.db.NewSelect().Model(&locs).Where("id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(locs))
	for _, l := range locs {
		names[l.ID] = l.Name
	}

	out := make([]domain.FeedEvent, 0, len(rows))
	for _, a := range rows {
		out = append(out, domain.NewFeedEvent(a, names[a.LocationID]))
	}
	return out, nil
}
