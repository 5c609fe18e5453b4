package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"clinicsched/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortField is the closed set of orderings for appointment lists. Each
// implementation maps it to its own columns.
type SortField string

const (
	SortByDate     SortField = "date"
	SortByPatient  SortField = "patient"
	SortByType     SortField = "type"
	SortByStatus   SortField = "status"
	SortByLocation SortField = "location"
	SortByCreated  SortField = "created"
)

var sortFields = []SortField{SortByDate, SortByPatient, SortByType, SortByStatus, SortByLocation, SortByCreated}

// ParseSortField maps an external name onto a SortField. Empty means date.
func ParseSortField(s string) (SortField, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortByDate, nil
	}
	for _, f := range sortFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid sort field %q", s)
}

type AppointmentFilter struct {
	From       *domain.Date
	To         *domain.Date
	Statuses   []domain.AppointmentStatus
	Type       domain.AppointmentType
	LocationID uuid.UUID
	PatientID  string
	Search     string
}

type AppointmentQuery struct {
	// ProviderID may be empty only when Filter.PatientID is set.
	ProviderID string
	Filter     AppointmentFilter
	Page       int
	PageSize   int
	Sort       SortField
	Descending bool
}

// Normalize fills defaults and clamps paging.
func (q AppointmentQuery) Normalize() AppointmentQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Sort == "" {
		q.Sort = SortByDate
	}
	q.Filter.Search = strings.TrimSpace(q.Filter.Search)
	return q
}

func (q AppointmentQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

type AppointmentPage struct {
	Items    []domain.Appointment
	Total    int
	Page     int
	PageSize int
}
