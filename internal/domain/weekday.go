package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday is the one day-of-week numbering used in storage, on the wire and in
// every comparison: Sunday=0 through Saturday=6.
type Weekday int16

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// WeekdayOf is the only place a date is turned into a Weekday.
func WeekdayOf(d Date) Weekday {
	return Weekday(d.Time().Weekday())
}

func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return "Weekday(" + strconv.Itoa(int(w)) + ")"
	}
	return time.Weekday(w).String()
}

// ParseWeekday accepts "0".."6" or an English day name, case-insensitive.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		w := Weekday(n)
		if !w.Valid() {
			return 0, fmt.Errorf("invalid weekday %q", s)
		}
		return w, nil
	}
	for w := Sunday; w <= Saturday; w++ {
		name := w.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return w, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
