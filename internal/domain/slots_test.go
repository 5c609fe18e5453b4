package domain

import (
	"testing"

	"github.com/google/uuid"
)

var (
	testLocation = uuid.MustParse("00000000-0000-0000-0000-00000000a001")
	otherLoc     = uuid.MustParse("00000000-0000-0000-0000-00000000a002")
	monday       = NewDate(2026, 1, 5)
)

func clock(t *testing.T, s string) ClockTime {
	t.Helper()
	c, err := ParseClockTime(s)
	if err != nil {
		t.Fatalf("ParseClockTime(%q) error: %v", s, err)
	}
	return c
}

func window(t *testing.T, start, end string) Window {
	t.Helper()
	return Window{Start: clock(t, start), End: clock(t, end)}
}

func request(t *testing.T, start, end string) SlotRequest {
	t.Helper()
	return SlotRequest{
		ProviderID: "p1",
		LocationID: testLocation,
		Date:       monday,
		Window:     window(t, start, end),
	}
}

func weeklyRule(t *testing.T, day Weekday, start, end string) WeeklyAvailability {
	t.Helper()
	return WeeklyAvailability{
		ID:         uuid.New(),
		LocationID: testLocation,
		DayOfWeek:  day,
		StartTime:  clock(t, start),
		EndTime:    clock(t, end),
	}
}

func booked(t *testing.T, start, end string, status AppointmentStatus) Appointment {
	t.Helper()
	return Appointment{
		ID:         uuid.New(),
		PatientID:  "pat",
		ProviderID: "p1",
		LocationID: testLocation,
		Date:       monday,
		StartTime:  clock(t, start),
		EndTime:    clock(t, end),
		Status:     status,
	}
}

func TestWeekdayOf_CanonicalNumbering(t *testing.T) {
	tests := []struct {
		date Date
		want Weekday
	}{
		{NewDate(2026, 1, 4), Sunday},
		{NewDate(2026, 1, 5), Monday},
		{NewDate(2026, 1, 10), Saturday},
		{NewDate(2024, 2, 29), Thursday},
	}
	for _, tt := range tests {
		if got := WeekdayOf(tt.date); got != tt.want {
			t.Fatalf("WeekdayOf(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
	if int(Sunday) != 0 || int(Saturday) != 6 {
		t.Fatalf("numbering changed: Sunday=%d Saturday=%d", Sunday, Saturday)
	}
}

func TestCheckSlot_Scenarios(t *testing.T) {
	weekly := []WeeklyAvailability{weeklyRule(t, Monday, "09:00", "17:00")}

	t.Run("weekly rule grants", func(t *testing.T) {
		got := CheckSlot(request(t, "10:00", "10:30"), SlotFacts{Weekly: weekly})
		if got != (Decision{Available: true, Reason: ReasonWeeklySchedule}) {
			t.Fatalf("decision = %+v", got)
		}
	})

	t.Run("full day blocking override for all locations", func(t *testing.T) {
		facts := SlotFacts{
			Weekly: weekly,
			Overrides: []Override{{
				ProviderID: "p1",
				Location:   AllLocations(),
				Date:       monday,
				Time:       FullDay(),
				Kind:       OverrideBlocking,
			}},
		}
		got := CheckSlot(request(t, "10:00", "10:30"), facts)
		if got.Available || got.Reason != ReasonOverrideBlock {
			t.Fatalf("decision = %+v, want override block", got)
		}
	})

	t.Run("overlapping appointment conflicts", func(t *testing.T) {
		facts := SlotFacts{
			Weekly:       weekly,
			Appointments: []Appointment{booked(t, "10:00", "10:30", StatusConfirmed)},
		}
		got := CheckSlot(request(t, "10:15", "10:45"), facts)
		if got.Available || got.Reason != ReasonConflict {
			t.Fatalf("decision = %+v, want conflict", got)
		}
	})

	t.Run("partial block does not cover adjacent window", func(t *testing.T) {
		facts := SlotFacts{
			Weekly: weekly,
			Overrides: []Override{{
				ProviderID: "p1",
				Location:   SpecificLocation(testLocation),
				Date:       monday,
				Time:       WindowScope(window(t, "12:00", "13:00")),
				Kind:       OverrideBlocking,
			}},
		}
		got := CheckSlot(request(t, "13:00", "13:30"), facts)
		if got != (Decision{Available: true, Reason: ReasonWeeklySchedule}) {
			t.Fatalf("decision = %+v", got)
		}
		got = CheckSlot(request(t, "12:45", "13:15"), facts)
		if got.Reason != ReasonOverrideBlock {
			t.Fatalf("decision = %+v, want override block", got)
		}
	})
}

func TestCheckSlot_ContainmentBoundaries(t *testing.T) {
	facts := SlotFacts{Weekly: []WeeklyAvailability{weeklyRule(t, Monday, "09:00", "09:30")}}

	if got := CheckSlot(request(t, "09:00", "09:30"), facts); !got.Available {
		t.Fatalf("exact fit = %+v, want available", got)
	}
	if got := CheckSlot(request(t, "09:00", "09:31"), facts); got.Available || got.Reason != ReasonOutsideAvailability {
		t.Fatalf("overhang = %+v, want outside availability", got)
	}
}

func TestCheckSlot_PriorityOrder(t *testing.T) {
	openAll := Override{
		ProviderID: "p1",
		Location:   AllLocations(),
		Date:       monday,
		Time:       WindowScope(window(t, "18:00", "20:00")),
		Kind:       OverrideOpen,
	}

	t.Run("open override grants outside weekly hours", func(t *testing.T) {
		got := CheckSlot(request(t, "18:30", "19:00"), SlotFacts{Overrides: []Override{openAll}})
		if got != (Decision{Available: true, Reason: ReasonOverrideOpen}) {
			t.Fatalf("decision = %+v", got)
		}
	})

	t.Run("conflict beats open override", func(t *testing.T) {
		facts := SlotFacts{
			Overrides:    []Override{openAll},
			Appointments: []Appointment{booked(t, "18:00", "18:45", StatusConfirmed)},
		}
		got := CheckSlot(request(t, "18:30", "19:00"), facts)
		if got.Reason != ReasonConflict {
			t.Fatalf("decision = %+v, want conflict", got)
		}
	})

	t.Run("block beats conflict", func(t *testing.T) {
		block := openAll
		block.Kind = OverrideBlocking
		facts := SlotFacts{
			Overrides:    []Override{block},
			Appointments: []Appointment{booked(t, "18:00", "18:45", StatusConfirmed)},
		}
		got := CheckSlot(request(t, "18:30", "19:00"), facts)
		if got.Reason != ReasonOverrideBlock {
			t.Fatalf("decision = %+v, want override block", got)
		}
	})

	t.Run("open override must contain the window", func(t *testing.T) {
		got := CheckSlot(request(t, "19:45", "20:15"), SlotFacts{Overrides: []Override{openAll}})
		if got.Available {
			t.Fatalf("decision = %+v, want unavailable", got)
		}
	})
}

func TestCheckSlot_IgnoresForeignFacts(t *testing.T) {
	facts := SlotFacts{
		Weekly: []WeeklyAvailability{
			weeklyRule(t, Tuesday, "09:00", "17:00"),
			{LocationID: otherLoc, DayOfWeek: Monday, StartTime: clock(t, "09:00"), EndTime: clock(t, "17:00")},
		},
		Overrides: []Override{
			{ProviderID: "p2", Location: AllLocations(), Date: monday, Time: FullDay(), Kind: OverrideBlocking},
			{ProviderID: "p1", Location: SpecificLocation(otherLoc), Date: monday, Time: FullDay(), Kind: OverrideBlocking},
			{ProviderID: "p1", Location: AllLocations(), Date: monday.AddDays(1), Time: FullDay(), Kind: OverrideBlocking},
		},
	}
	got := CheckSlot(request(t, "10:00", "10:30"), facts)
	if got.Available || got.Reason != ReasonOutsideAvailability {
		t.Fatalf("decision = %+v, want outside availability", got)
	}
}

func TestCheckSlot_CanceledAndExcludedAppointmentsDoNotConflict(t *testing.T) {
	weekly := []WeeklyAvailability{weeklyRule(t, Monday, "09:00", "17:00")}
	self := booked(t, "10:00", "10:30", StatusConfirmed)
	canceled := booked(t, "10:00", "10:30", StatusCanceled)

	req := request(t, "10:00", "10:30")
	req.ExcludeAppointmentID = self.ID

	got := CheckSlot(req, SlotFacts{Weekly: weekly, Appointments: []Appointment{self, canceled}})
	if !got.Available {
		t.Fatalf("decision = %+v, want available", got)
	}

	for _, st := range []AppointmentStatus{StatusCompleted, StatusNoShow, StatusRescheduled} {
		other := booked(t, "10:00", "10:30", st)
		got := CheckSlot(request(t, "10:00", "10:30"), SlotFacts{Weekly: weekly, Appointments: []Appointment{other}})
		if got.Reason != ReasonConflict {
			t.Fatalf("status %s: decision = %+v, want conflict", st, got)
		}
	}
}

func TestCheckSlot_AvailableImpliesNoBlockAndNoConflict(t *testing.T) {
	weekly := []WeeklyAvailability{weeklyRule(t, Monday, "08:00", "18:00")}
	overrides := []Override{
		{ProviderID: "p1", Location: AllLocations(), Date: monday, Time: WindowScope(window(t, "12:00", "13:00")), Kind: OverrideBlocking},
	}
	appts := []Appointment{booked(t, "09:00", "09:45", StatusConfirmed), booked(t, "15:10", "15:40", StatusRescheduled)}
	facts := SlotFacts{Weekly: weekly, Overrides: overrides, Appointments: appts}

	for start := NewClockTime(7, 0); start < NewClockTime(18, 0); start = start.Add(5) {
		req := SlotRequest{ProviderID: "p1", LocationID: testLocation, Date: monday, Window: Window{Start: start, End: start.Add(30)}}
		if !CheckSlot(req, facts).Available {
			continue
		}
		if overrides[0].Time.Overlaps(req.Window) {
			t.Fatalf("%s granted despite block", req.Window)
		}
		if len(Conflicts(req, appts)) > 0 {
			t.Fatalf("%s granted despite conflict", req.Window)
		}
	}
}

func TestOverridesConflict(t *testing.T) {
	base := Override{ProviderID: "p1", Date: monday, Kind: OverrideBlocking}
	with := func(loc LocationScope, ts TimeScope, kind OverrideKind) Override {
		o := base
		o.Location, o.Time, o.Kind = loc, ts, kind
		return o
	}
	morning := WindowScope(window(t, "09:00", "12:00"))
	noon := WindowScope(window(t, "12:00", "13:00"))
	late := WindowScope(window(t, "11:00", "14:00"))

	tests := []struct {
		name string
		a, b Override
		want bool
	}{
		{"full day vs window same location", with(SpecificLocation(testLocation), FullDay(), OverrideBlocking), with(SpecificLocation(testLocation), noon, OverrideOpen), true},
		{"touching windows", with(AllLocations(), morning, OverrideBlocking), with(AllLocations(), noon, OverrideBlocking), false},
		{"overlap with all locations", with(AllLocations(), morning, OverrideOpen), with(SpecificLocation(testLocation), late, OverrideBlocking), true},
		{"different specific locations", with(SpecificLocation(testLocation), morning, OverrideBlocking), with(SpecificLocation(otherLoc), morning, OverrideBlocking), false},
		{"open vs open", with(SpecificLocation(testLocation), morning, OverrideOpen), with(SpecificLocation(testLocation), late, OverrideOpen), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverridesConflict(tt.a, tt.b); got != tt.want {
				t.Fatalf("OverridesConflict = %v, want %v", got, tt.want)
			}
			if got := OverridesConflict(tt.b, tt.a); got != tt.want {
				t.Fatalf("OverridesConflict (swapped) = %v, want %v", got, tt.want)
			}
		})
	}

	otherDay := with(AllLocations(), FullDay(), OverrideBlocking)
	otherDay.Date = monday.AddDays(7)
	if OverridesConflict(with(AllLocations(), FullDay(), OverrideBlocking), otherDay) {
		t.Fatalf("overrides on different dates must not conflict")
	}
}

func TestWeeklySlotsOverlap(t *testing.T) {
	a := weeklyRule(t, Monday, "09:00", "12:00")
	if !WeeklySlotsOverlap(a, weeklyRule(t, Monday, "11:00", "14:00")) {
		t.Fatalf("expected overlap")
	}
	if WeeklySlotsOverlap(a, weeklyRule(t, Monday, "12:00", "14:00")) {
		t.Fatalf("touching slots must not overlap")
	}
	if WeeklySlotsOverlap(a, weeklyRule(t, Tuesday, "09:00", "12:00")) {
		t.Fatalf("different days must not overlap")
	}
}

func TestCapacity(t *testing.T) {
	appts := []Appointment{
		booked(t, "09:00", "09:30", StatusConfirmed),
		booked(t, "10:00", "10:30", StatusCompleted),
		booked(t, "11:00", "11:30", StatusCanceled),
	}
	n := CountOccupying(appts, testLocation, monday, uuid.Nil)
	if n != 2 {
		t.Fatalf("CountOccupying = %d, want 2", n)
	}
	if got := CountOccupying(appts, testLocation, monday, appts[0].ID); got != 1 {
		t.Fatalf("CountOccupying excluding = %d, want 1", got)
	}

	limit := &DailyCap{MaxAppointments: 2}
	if !CapacityReached(limit, n) {
		t.Fatalf("expected cap reached at %d/%d", n, limit.MaxAppointments)
	}
	if CapacityReached(limit, 1) {
		t.Fatalf("cap reached too early")
	}
	if CapacityReached(nil, 1000) {
		t.Fatalf("nil cap must be unlimited")
	}
	if !CapacityReached(&DailyCap{MaxAppointments: 0}, 0) {
		t.Fatalf("zero cap must reject every booking")
	}
}

func TestCandidateWindows(t *testing.T) {
	req := request(t, "00:00", "00:30")
	facts := SlotFacts{
		Weekly: []WeeklyAvailability{
			weeklyRule(t, Monday, "09:00", "10:00"),
			weeklyRule(t, Monday, "09:30", "10:15"),
		},
		Overrides: []Override{
			{ProviderID: "p1", Location: AllLocations(), Date: monday, Time: WindowScope(window(t, "18:00", "18:45")), Kind: OverrideOpen},
		},
	}
	got := CandidateWindows(req, facts, 30, 30)
	want := []string{"09:00-09:30", "09:30-10:00", "18:00-18:30"}
	if len(got) != len(want) {
		t.Fatalf("windows = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Fatalf("windows[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDurationOf(t *testing.T) {
	if got := DurationOf(TypeProcedure); got != 60 {
		t.Fatalf("procedure = %d, want 60", got)
	}
	if got := DurationOf("unheard_of"); got != DefaultDurationMinutes {
		t.Fatalf("unknown = %d, want %d", got, DefaultDurationMinutes)
	}
}
