package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OverrideKind string

const (
	OverrideBlocking OverrideKind = "blocking"
	OverrideOpen     OverrideKind = "open"
)

func ParseOverrideKind(s string) (OverrideKind, error) {
	switch OverrideKind(strings.ToLower(strings.TrimSpace(s))) {
	case OverrideBlocking, "block", "unavailable":
		return OverrideBlocking, nil
	case OverrideOpen, "available":
		return OverrideOpen, nil
	}
	return "", fmt.Errorf("invalid override kind %q", s)
}

// LocationScope is either one specific location or all of a provider's
// locations. The zero value is AllLocations.
type LocationScope struct {
	id uuid.UUID
}

func AllLocations() LocationScope {
	return LocationScope{}
}

func SpecificLocation(id uuid.UUID) LocationScope {
	return LocationScope{id: id}
}

func (s LocationScope) IsAll() bool {
	return s.id == uuid.Nil
}

// LocationID returns the location for a Specific scope.
func (s LocationScope) LocationID() (uuid.UUID, bool) {
	return s.id, !s.IsAll()
}

// Matches reports whether the scope applies to location id.
func (s LocationScope) Matches(id uuid.UUID) bool {
	return s.IsAll() || s.id == id
}

// Intersects reports whether two scopes can apply to the same location.
func (s LocationScope) Intersects(o LocationScope) bool {
	return s.IsAll() || o.IsAll() || s.id == o.id
}

func (s LocationScope) String() string {
	if s.IsAll() {
		return "all"
	}
	return s.id.String()
}

// TimeScope is either the full day or a window within it. The zero value is
// FullDay.
type TimeScope struct {
	window  Window
	partial bool
}

func FullDay() TimeScope {
	return TimeScope{}
}

func WindowScope(w Window) TimeScope {
	return TimeScope{window: w, partial: true}
}

func (s TimeScope) IsFullDay() bool {
	return !s.partial
}

func (s TimeScope) Window() (Window, bool) {
	return s.window, s.partial
}

// Overlaps treats FullDay as overlapping everything.
func (s TimeScope) Overlaps(w Window) bool {
	return !s.partial || s.window.Overlaps(w)
}

func (s TimeScope) OverlapsScope(o TimeScope) bool {
	if !s.partial || !o.partial {
		return true
	}
	return s.window.Overlaps(o.window)
}

// Contains treats FullDay as containing every window.
func (s TimeScope) Contains(w Window) bool {
	return !s.partial || s.window.Contains(w)
}

func (s TimeScope) String() string {
	if !s.partial {
		return "full day"
	}
	return s.window.String()
}

// Override is a date-specific exception to weekly availability.
type Override struct {
	ID         uuid.UUID
	ProviderID string
	Location   LocationScope
	Date       Date
	Time       TimeScope
	Kind       OverrideKind
	Reason     string
	CreatedAt  time.Time
}

// OverridesConflict is the stacking rule for overrides of one provider: same
// date, overlapping time scopes and intersecting location scopes. Kind is not
// considered.
func OverridesConflict(a, b Override) bool {
	return a.ProviderID == b.ProviderID &&
		a.Date == b.Date &&
		a.Time.OverlapsScope(b.Time) &&
		a.Location.Intersects(b.Location)
}
