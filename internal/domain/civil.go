package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date with no time-of-day or zone. All scheduling data
// shares one civil calendar.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the civil date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.UnmarshalText([]byte(firstField(v)))
	case []byte:
		return d.UnmarshalText([]byte(firstField(string(v))))
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

// ClockTime is a time of day with minute precision, counted in minutes since
// midnight. Valid values are 00:00 through 23:59. EndOfDay (24:00) is only
// meaningful as the end of a Window.
type ClockTime int

const (
	MinutesPerDay = 24 * 60

	EndOfDay ClockTime = MinutesPerDay
)

var errInvalidClock = errors.New("invalid time of day")

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime accepts "HH:MM" and "HH:MM:SS"; seconds must be zero. "24:00"
// parses as EndOfDay.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w %q", errInvalidClock, s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || len(p) != 2 {
			return 0, fmt.Errorf("%w %q", errInvalidClock, s)
		}
		nums[i] = n
	}
	if nums[1] > 59 || (len(nums) == 3 && nums[2] != 0) {
		return 0, fmt.Errorf("%w %q", errInvalidClock, s)
	}
	if nums[0] == 24 && nums[1] == 0 {
		return EndOfDay, nil
	}
	if nums[0] > 23 {
		return 0, fmt.Errorf("%w %q", errInvalidClock, s)
	}
	return NewClockTime(nums[0], nums[1]), nil
}

func (c ClockTime) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) Add(minutes int) ClockTime {
	return c + ClockTime(minutes)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On returns the instant of c on date d, in UTC.
func (c ClockTime) On(d Date) time.Time {
	return d.Time().Add(time.Duration(c) * time.Minute)
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c ClockTime) Value() (driver.Value, error) {
	return c.String() + ":00", nil
}

func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c = NewClockTime(v.Hour(), v.Minute())
		return nil
	case string:
		return c.scanString(v)
	case []byte:
		return c.scanString(string(v))
	case int64:
		// microseconds since midnight
		*c = ClockTime(v / int64(time.Minute/time.Microsecond))
		return nil
	}
	return fmt.Errorf("cannot scan %T into ClockTime", src)
}

func (c *ClockTime) scanString(s string) error {
	// Postgres may render fractional seconds.
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return c.UnmarshalText([]byte(s))
}

func firstField(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}

// Window is a half-open interval [Start, End) within one day.
type Window struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Valid requires Start < End within one day. End may be EndOfDay.
func (w Window) Valid() bool {
	return w.Start.Valid() && w.Start < w.End && w.End <= EndOfDay
}

// Overlaps reports whether w and o share any instant. Touching endpoints do
// not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// Contains reports whether o lies entirely within w.
func (w Window) Contains(o Window) bool {
	return w.Start <= o.Start && o.End <= w.End
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
