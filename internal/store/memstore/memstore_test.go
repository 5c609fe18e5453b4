package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"clinicsched/internal/domain"
	"clinicsched/internal/store"
)

var day = domain.NewDate(2026, 3, 9)

func seed(t *testing.T, s *Store) domain.Location {
	t.Helper()
	var loc domain.Location
	err := s.InTx(context.Background(), func(ctx context.Context, tx store.SchedulingTx) error {
		var err error
		loc, err = tx.InsertLocation(ctx, domain.Location{ProviderID: "prov-1", Name: "Downtown", Active: true})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return loc
}

func appt(loc domain.Location, patient string, h, m, minutes int) domain.Appointment {
	start := domain.NewClockTime(h, m)
	return domain.Appointment{
		PatientID:  patient,
		ProviderID: loc.ProviderID,
		LocationID: loc.ID,
		Date:       day,
		StartTime:  start,
		EndTime:    start.Add(minutes),
		Type:       domain.TypeConsultation,
		Status:     domain.StatusConfirmed,
		CreatedBy:  patient,
		UpdatedBy:  patient,
	}
}

func insert(s *Store, a domain.Appointment) (domain.Appointment, error) {
	var out domain.Appointment
	err := s.InTx(context.Background(), func(ctx context.Context, tx store.SchedulingTx) error {
		var err error
		out, err = tx.InsertAppointment(ctx, a)
		return err
	})
	return out, err
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := New()
	boom := errors.New("boom")

	err := s.InTx(context.Background(), func(ctx context.Context, tx store.SchedulingTx) error {
		if _, err := tx.InsertLocation(ctx, domain.Location{ProviderID: "prov-1", Name: "Annex", Active: true}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	_ = s.View(context.Background(), func(ctx context.Context, tx store.SchedulingTx) error {
		locs, _ := tx.ListLocations(ctx, "prov-1", true)
		if len(locs) != 0 {
			t.Fatalf("locations after rollback = %v", locs)
		}
		return nil
	})
}

func TestView_RejectsWrites(t *testing.T) {
	s := New()
	err := s.View(context.Background(), func(ctx context.Context, tx store.SchedulingTx) error {
		_, err := tx.InsertLocation(ctx, domain.Location{ProviderID: "prov-1", Name: "Annex"})
		return err
	})
	if !errors.Is(err, store.ErrReadOnly) {
		t.Fatalf("err = %v, want store.ErrReadOnly", err)
	}
}

func TestInsertAppointment_OverlapAndIdempotency(t *testing.T) {
	s := New()
	loc := seed(t, s)

	first, err := insert(s, appt(loc, "pat-1", 9, 0, 30))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := insert(s, appt(loc, "pat-2", 9, 15, 30)); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("overlap err = %v, want ErrConflict", err)
	}
	if _, err := insert(s, appt(loc, "pat-2", 9, 30, 30)); err != nil {
		t.Fatalf("touching insert: %v", err)
	}

	canceled := appt(loc, "pat-3", 10, 0, 30)
	canceled.Status = domain.StatusCanceled
	if _, err := insert(s, canceled); err != nil {
		t.Fatalf("canceled insert: %v", err)
	}
	if _, err := insert(s, appt(loc, "pat-4", 10, 0, 30)); err != nil {
		t.Fatalf("insert over canceled: %v", err)
	}

	keyed := appt(loc, "pat-5", 11, 0, 30)
	keyed.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("key-1"))
	a, err := insert(s, keyed)
	if err != nil {
		t.Fatalf("keyed insert: %v", err)
	}
	again, err := insert(s, keyed)
	if err != nil || again.ID != a.ID || !again.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("replay = %+v, %v", again, err)
	}
	keyed.StartTime, keyed.EndTime = domain.NewClockTime(12, 0), domain.NewClockTime(12, 30)
	if _, err := insert(s, keyed); !errors.Is(err, store.ErrIdempotencyConflict) {
		t.Fatalf("reused key err = %v, want ErrIdempotencyConflict", err)
	}

	if first.ID == uuid.Nil || first.CreatedAt.IsZero() {
		t.Fatalf("first = %+v, want id and timestamps", first)
	}
}

func TestListAppointments_FilterSortPage(t *testing.T) {
	s := New()
	loc := seed(t, s)
	for i, patient := range []string{"pat-c", "pat-a", "pat-b"} {
		a := appt(loc, patient, 9+i, 0, 30)
		a.Reason = "checkup"
		if _, err := insert(s, a); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	other := appt(loc, "pat-z", 15, 0, 30)
	other.ProviderID = "prov-2"
	if _, err := insert(s, other); err != nil {
		t.Fatalf("insert other provider: %v", err)
	}

	page, err := s.ListAppointments(context.Background(), store.AppointmentQuery{
		ProviderID: "prov-1",
		Sort:       store.SortByPatient,
		PageSize:   2,
		Page:       1,
	})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.Items[0].PatientID != "pat-a" || page.Items[1].PatientID != "pat-b" {
		t.Fatalf("page = %+v", page)
	}

	page, _ = s.ListAppointments(context.Background(), store.AppointmentQuery{ProviderID: "prov-1", Descending: true, Page: 9})
	if page.Total != 3 || len(page.Items) != 0 {
		t.Fatalf("past-the-end page = %+v", page)
	}

	page, _ = s.ListAppointments(context.Background(), store.AppointmentQuery{
		ProviderID: "prov-1",
		Filter:     store.AppointmentFilter{Search: "DOWNTOWN"},
	})
	if page.Total != 3 {
		t.Fatalf("search by location name total = %d, want 3", page.Total)
	}
	page, _ = s.ListAppointments(context.Background(), store.AppointmentQuery{
		ProviderID: "prov-1",
		Filter:     store.AppointmentFilter{Search: "dental"},
	})
	if page.Total != 0 {
		t.Fatalf("unmatched search total = %d", page.Total)
	}
}

func TestListAppointments_PatientFilter(t *testing.T) {
	s := New()
	loc := seed(t, s)
	for i, patient := range []string{"pat-a", "pat-b"} {
		if _, err := insert(s, appt(loc, patient, 9+i, 0, 30)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	elsewhere := appt(loc, "pat-a", 14, 0, 30)
	elsewhere.ProviderID = "prov-2"
	if _, err := insert(s, elsewhere); err != nil {
		t.Fatalf("insert other provider: %v", err)
	}

	tests := []struct {
		name     string
		provider string
		want     int
	}{
		{name: "one provider", provider: "prov-1", want: 1},
		{name: "every provider", provider: "", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.ListAppointments(context.Background(), store.AppointmentQuery{
				ProviderID: tt.provider,
				Filter:     store.AppointmentFilter{PatientID: "pat-a"},
			})
			if err != nil {
				t.Fatalf("ListAppointments: %v", err)
			}
			if page.Total != tt.want {
				t.Fatalf("total = %d, want %d", page.Total, tt.want)
			}
			for _, a := range page.Items {
				if a.PatientID != "pat-a" {
					t.Fatalf("got appointment of %s", a.PatientID)
				}
			}
		})
	}
}

func TestInsertedRowsGetTimeOrderedIDs(t *testing.T) {
	s := New()
	loc := seed(t, s)
	var ids []uuid.UUID
	err := s.InTx(context.Background(), func(ctx context.Context, tx store.SchedulingTx) error {
		o, err := tx.InsertOverride(ctx, domain.Override{
			ProviderID: "prov-1",
			Location:   domain.AllLocations(),
			Date:       day,
			Time:       domain.FullDay(),
			Kind:       domain.OverrideBlocking,
		})
		if err != nil {
			return err
		}
		w, err := tx.InsertWeeklySlot(ctx, domain.WeeklyAvailability{
			LocationID: loc.ID,
			DayOfWeek:  domain.Monday,
			StartTime:  domain.NewClockTime(9, 0),
			EndTime:    domain.NewClockTime(12, 0),
		})
		if err != nil {
			return err
		}
		c, err := tx.UpsertDailyCap(ctx, domain.DailyCap{
			ProviderID:      "prov-1",
			LocationID:      loc.ID,
			DayOfWeek:       domain.Monday,
			MaxAppointments: 4,
		})
		if err != nil {
			return err
		}
		ids = append(ids, loc.ID, o.ID, w.ID, c.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	for i, id := range ids {
		if id.Version() != 7 {
			t.Fatalf("id %d = %s has version %d, want 7", i, id, id.Version())
		}
	}
}

func TestListFeedEvents_HalfOpenRange(t *testing.T) {
	s := New()
	loc := seed(t, s)
	if _, err := insert(s, appt(loc, "pat-1", 9, 0, 30)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	canceled := appt(loc, "pat-2", 10, 0, 30)
	canceled.Status = domain.StatusCanceled
	if _, err := insert(s, canceled); err != nil {
		t.Fatalf("insert: %v", err)
	}

	events, err := s.ListFeedEvents(context.Background(), "prov-1", day, day.AddDays(1))
	if err != nil {
		t.Fatalf("ListFeedEvents: %v", err)
	}
	if len(events) != 1 || events[0].LocationName != "Downtown" {
		t.Fatalf("events = %+v", events)
	}

	events, _ = s.ListFeedEvents(context.Background(), "prov-1", day.AddDays(-1), day)
	if len(events) != 0 {
		t.Fatalf("end date should be exclusive, got %+v", events)
	}
}
