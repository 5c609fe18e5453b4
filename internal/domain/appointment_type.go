package domain

import "strings"

type AppointmentType string

const (
	TypeConsultation     AppointmentType = "consultation"
	TypeFollowUp         AppointmentType = "follow_up"
	TypeCheckup          AppointmentType = "checkup"
	TypeProcedure        AppointmentType = "procedure"
	TypeVaccination      AppointmentType = "vaccination"
	TypeNutritionConsult AppointmentType = "nutrition_consult"
	TypeTelehealth       AppointmentType = "telehealth"
)

const DefaultDurationMinutes = 30

var durations = map[AppointmentType]int{
	TypeConsultation:     30,
	TypeFollowUp:         15,
	TypeCheckup:          30,
	TypeProcedure:        60,
	TypeVaccination:      15,
	TypeNutritionConsult: 45,
	TypeTelehealth:       20,
}

// DurationOf returns the booked length of an appointment type in minutes.
// Unknown types get DefaultDurationMinutes.
func DurationOf(t AppointmentType) int {
	if m, ok := durations[t]; ok {
		return m
	}
	return DefaultDurationMinutes
}

func NormalizeType(s string) AppointmentType {
	return AppointmentType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
}

func (t AppointmentType) Label() string {
	if t == "" {
		return "Appointment"
	}
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
