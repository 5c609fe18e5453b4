package domain

import (
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{in: "09:00", want: NewClockTime(9, 0)},
		{in: "23:59", want: NewClockTime(23, 59)},
		{in: "07:30:00", want: NewClockTime(7, 30)},
		{in: "7:30", wantErr: true},
		{in: "24:00", want: EndOfDay},
		{in: "24:00:00", want: EndOfDay},
		{in: "24:01", wantErr: true},
		{in: "25:00", wantErr: true},
		{in: "10:60", wantErr: true},
		{in: "10:15:30", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClockTime(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClockTime error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseClockTime = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWindowValid(t *testing.T) {
	tests := []struct {
		name string
		w    Window
		want bool
	}{
		{name: "morning", w: Window{Start: NewClockTime(9, 0), End: NewClockTime(12, 0)}, want: true},
		{name: "ends at midnight", w: Window{Start: NewClockTime(23, 30), End: EndOfDay}, want: true},
		{name: "whole day", w: Window{Start: 0, End: EndOfDay}, want: true},
		{name: "starts at midnight end", w: Window{Start: EndOfDay, End: EndOfDay + 30}},
		{name: "runs past midnight", w: Window{Start: NewClockTime(23, 30), End: EndOfDay + 15}},
		{name: "empty", w: Window{Start: NewClockTime(10, 0), End: NewClockTime(10, 0)}},
		{name: "inverted", w: Window{Start: NewClockTime(11, 0), End: NewClockTime(10, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Valid(); got != tt.want {
				t.Fatalf("%s Valid() = %v, want %v", tt.w, got, tt.want)
			}
		})
	}
}

func TestClockTimeScan(t *testing.T) {
	var c ClockTime
	if err := c.Scan("13:45:00.000000"); err != nil || c != NewClockTime(13, 45) {
		t.Fatalf("scan string = %s, %v", c, err)
	}
	if err := c.Scan([]byte("08:05:00")); err != nil || c != NewClockTime(8, 5) {
		t.Fatalf("scan bytes = %s, %v", c, err)
	}
	if err := c.Scan(time.Date(0, 1, 1, 16, 20, 0, 0, time.UTC)); err != nil || c != NewClockTime(16, 20) {
		t.Fatalf("scan time = %s, %v", c, err)
	}
	v, err := NewClockTime(9, 5).Value()
	if err != nil || v != "09:05:00" {
		t.Fatalf("Value = %v, %v", v, err)
	}
	if err := c.Scan("24:00:00"); err != nil || c != EndOfDay {
		t.Fatalf("scan end of day = %s, %v", c, err)
	}
	if v, err := EndOfDay.Value(); err != nil || v != "24:00:00" {
		t.Fatalf("EndOfDay Value = %v, %v", v, err)
	}
}

func TestDateScanAndFormat(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan time: %v", err)
	}
	if d.String() != "2026-03-09" {
		t.Fatalf("date = %s", d)
	}
	if err := d.Scan("2026-12-31T00:00:00Z"); err != nil || d != NewDate(2026, 12, 31) {
		t.Fatalf("scan string = %s, %v", d, err)
	}
	if got := NewDate(2026, 12, 31).AddDays(1); got != NewDate(2027, 1, 1) {
		t.Fatalf("AddDays = %s", got)
	}
	if _, err := ParseDate("2026-02-30"); err == nil {
		t.Fatalf("expected invalid date error")
	}
}

func TestWindow(t *testing.T) {
	a := Window{Start: NewClockTime(9, 0), End: NewClockTime(10, 0)}
	b := Window{Start: NewClockTime(10, 0), End: NewClockTime(11, 0)}
	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatalf("touching windows overlap")
	}
	if !a.Contains(a) {
		t.Fatalf("window must contain itself")
	}
	if (Window{Start: NewClockTime(10, 0), End: NewClockTime(10, 0)}).Valid() {
		t.Fatalf("empty window is valid")
	}
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]Weekday{"0": Sunday, "monday": Monday, "Sat": Saturday} {
		got, err := ParseWeekday(in)
		if err != nil || got != want {
			t.Fatalf("ParseWeekday(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseWeekday("7"); err == nil {
		t.Fatalf("expected error for 7")
	}
}
