package schedulingv1

import "time"

// Dates are YYYY-MM-DD and clock times HH:MM, both in clinic-local civil
// time. Days of week accept 0 (Sunday) through 6 or an English day name.

type Appointment struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	ProviderID string    `json:"provider_id"`
	LocationID string    `json:"location_id"`
	Date       string    `json:"date"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedBy  string    `json:"created_by"`
	UpdatedBy  string    `json:"updated_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Location struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	Active     bool   `json:"active"`
}

type WeeklySlot struct {
	ID         string `json:"id"`
	LocationID string `json:"location_id"`
	DayOfWeek  int    `json:"day_of_week"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

type Override struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	// LocationID is empty when the override covers every location.
	LocationID string `json:"location_id,omitempty"`
	Date       string `json:"date"`
	// Start and End are empty for a full-day override.
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	Kind   string `json:"kind"`
	Reason string `json:"reason,omitempty"`
}

type DailyCap struct {
	ID              string `json:"id"`
	LocationID      string `json:"location_id"`
	DayOfWeek       int    `json:"day_of_week"`
	MaxAppointments int    `json:"max_appointments"`
}

type FeedEvent struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Status       string    `json:"status"`
	Type         string    `json:"type"`
	LocationName string    `json:"location_name"`
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Empty struct{}

type CheckAvailabilityRequest struct {
	ProviderID           string `json:"provider_id"`
	LocationID           string `json:"location_id"`
	Date                 string `json:"date"`
	Start                string `json:"start"`
	End                  string `json:"end"`
	ExcludeAppointmentID string `json:"exclude_appointment_id,omitempty"`
}

type CheckAvailabilityResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

type CreateAppointmentRequest struct {
	PatientID  string `json:"patient_id"`
	ProviderID string `json:"provider_id"`
	LocationID string `json:"location_id"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	Type       string `json:"type"`
	Reason     string `json:"reason,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}

type RescheduleAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	LocationID    string `json:"location_id,omitempty"`
}

type CancelAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type SetAppointmentStatusRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

type UpdateAppointmentNotesRequest struct {
	AppointmentID string `json:"appointment_id"`
	Notes         string `json:"notes"`
}

type GetAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type ListAppointmentsRequest struct {
	ProviderID string   `json:"provider_id"`
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	Statuses   []string `json:"statuses,omitempty"`
	Type       string   `json:"type,omitempty"`
	LocationID string   `json:"location_id,omitempty"`
	PatientID  string   `json:"patient_id,omitempty"`
	Search     string   `json:"search,omitempty"`
	Page       int      `json:"page,omitempty"`
	PageSize   int      `json:"page_size,omitempty"`
	Sort       string   `json:"sort,omitempty"`
	Descending bool     `json:"descending,omitempty"`
}

type ListAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
	Total        int            `json:"total"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
}

type FeedEventsRequest struct {
	ProviderID string `json:"provider_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

type FeedEventsResponse struct {
	Events []*FeedEvent `json:"events"`
}

type ListOpenSlotsRequest struct {
	ProviderID string `json:"provider_id"`
	LocationID string `json:"location_id"`
	Date       string `json:"date"`
	Type       string `json:"type"`
}

type ListOpenSlotsResponse struct {
	Slots      []*TimeSlot `json:"slots"`
	CapReached bool        `json:"cap_reached"`
}

type AddLocationRequest struct {
	ProviderID string `json:"provider_id"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
}

type LocationResponse struct {
	Location *Location `json:"location"`
}

type DeactivateLocationRequest struct {
	ProviderID string `json:"provider_id"`
	LocationID string `json:"location_id"`
}

type ListLocationsRequest struct {
	ProviderID      string `json:"provider_id"`
	IncludeInactive bool   `json:"include_inactive,omitempty"`
}

type ListLocationsResponse struct {
	Locations []*Location `json:"locations"`
}

type AddWeeklySlotRequest struct {
	ProviderID string `json:"provider_id"`
	LocationID string `json:"location_id"`
	DayOfWeek  string `json:"day_of_week"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

type WeeklySlotResponse struct {
	Slot *WeeklySlot `json:"slot"`
}

type DeleteWeeklySlotRequest struct {
	ProviderID string `json:"provider_id"`
	SlotID     string `json:"slot_id"`
}

type ListWeeklySlotsRequest struct {
	ProviderID string `json:"provider_id"`
	LocationID string `json:"location_id"`
}

type ListWeeklySlotsResponse struct {
	Slots []*WeeklySlot `json:"slots"`
}

type AddOverrideRequest struct {
	ProviderID string `json:"provider_id"`
	LocationID string `json:"location_id,omitempty"`
	Date       string `json:"date"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason,omitempty"`
}

type OverrideResponse struct {
	Override *Override `json:"override"`
}

type DeleteOverrideRequest struct {
	ProviderID string `json:"provider_id"`
	OverrideID string `json:"override_id"`
}

type ListOverridesRequest struct {
	ProviderID string `json:"provider_id"`
	From       string `json:"from"`
	To         string `json:"to"`
}

type ListOverridesResponse struct {
	Overrides []*Override `json:"overrides"`
}

type SetDailyCapRequest struct {
	ProviderID      string `json:"provider_id"`
	LocationID      string `json:"location_id"`
	DayOfWeek       string `json:"day_of_week"`
	MaxAppointments int    `json:"max_appointments"`
}

type DailyCapResponse struct {
	Cap *DailyCap `json:"cap"`
}

type ClearDailyCapRequest struct {
	ProviderID string `json:"provider_id"`
	LocationID string `json:"location_id"`
	DayOfWeek  string `json:"day_of_week"`
}

type ListDailyCapsRequest struct {
	ProviderID string `json:"provider_id"`
	LocationID string `json:"location_id"`
}

type ListDailyCapsResponse struct {
	Caps []*DailyCap `json:"caps"`
}
