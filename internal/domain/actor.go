package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleProvider Role = "provider"
	RolePatient  Role = "patient"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleProvider, RolePatient, RoleAdmin:
		return r, nil
	case "doctor", "nutritionist":
		return RoleProvider, nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// Actor is an already-authenticated caller.
type Actor struct {
	ID   string
	Role Role
}

// CanAccess reports whether the actor may see or change a.
func (act Actor) CanAccess(a Appointment) bool {
	switch act.Role {
	case RoleAdmin:
		return true
	case RoleProvider:
		return a.ProviderID == act.ID
	case RolePatient:
		return a.PatientID == act.ID
	}
	return false
}
