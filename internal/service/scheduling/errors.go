package scheduling

import (
	"errors"
	"fmt"

	"clinicsched/internal/domain"
)

// schedulingError marks errors that carry a business meaning. Anything else
// leaving the service is wrapped in a StorageError.
type schedulingError interface {
	error
	scheduling()
}

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }
func (*ValidationError) scheduling()     {}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }
func (*NotFoundError) scheduling()     {}

func notFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// SlotUnavailableError is a booking rejected by the slot resolver or by the
// store's overlap constraint. Retrying may succeed once the slot frees up.
type SlotUnavailableError struct {
	Reason domain.Reason
}

func (e *SlotUnavailableError) Error() string { return "slot unavailable: " + string(e.Reason) }
func (*SlotUnavailableError) scheduling()     {}

type ImmutableStateError struct {
	Status domain.AppointmentStatus
}

func (e *ImmutableStateError) Error() string {
	return fmt.Sprintf("appointment is %s and can no longer be changed", e.Status)
}
func (*ImmutableStateError) scheduling() {}

type OverlapError struct {
	msg string
}

func (e *OverlapError) Error() string { return e.msg }
func (*OverlapError) scheduling()     {}

type CapacityExceededError struct {
	Max    int
	Booked int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s: %d of %d booked", domain.ReasonDailyCap, e.Booked, e.Max)
}
func (*CapacityExceededError) scheduling() {}

// StorageError is an unexpected store failure. The transaction has already
// been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
func (*StorageError) scheduling()     {}

func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se schedulingError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
