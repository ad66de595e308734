package booking

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotUnavailable     = errors.New("slot is not available")
	ErrSlotAlreadyBooked   = errors.New("slot already has an appointment")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrInvalidState        = errors.New("appointment is not in a state that permits this transition")
	ErrDuplicateCode       = errors.New("appointment code already exists")
)

// Repository contains all DB interactions needed by the booking service.
// Multi-step writes (booking, cancellation, direct creation, deletion) are
// single transactions inside the implementation.
type Repository interface {
	CreateSlot(ctx context.Context, providerID int64, startsAt time.Time, durationMins int) (*TimeSlot, error)
	ListSlotsByProvider(ctx context.Context, providerID int64, onlyOpen bool) ([]TimeSlot, error)

	// BookSlot reserves the slot and creates the scheduled appointment
	// atomically: the slot row is locked, its availability flag and any
	// existing non-cancelled appointment are re-checked under the lock.
	BookSlot(ctx context.Context, recipientID, slotID int64) (*Appointment, error)

	GetAppointment(ctx context.Context, id int64) (*Appointment, error)
	ListAppointmentsByRecipient(ctx context.Context, recipientID int64) ([]Appointment, error)
	ListAppointmentsByProvider(ctx context.Context, providerID int64) ([]Appointment, error)
	ListAppointments(ctx context.Context, limit int) ([]Appointment, error)

	// CancelAppointment flips scheduled -> cancelled and releases the
	// referenced slot, tolerating an absent slot.
	CancelAppointment(ctx context.Context, id int64) (*Appointment, error)
	// CompleteAppointment flips scheduled -> completed. The slot stays
	// consumed.
	CompleteAppointment(ctx context.Context, id int64) (*Appointment, error)

	// CreateDirectAppointment is the admin path without a slot: it assigns
	// the recipient's patient uid when absent and the appointment code, all
	// in one transaction.
	CreateDirectAppointment(ctx context.Context, recipientID, providerID int64, bookedAt time.Time) (*Appointment, error)
	// DeleteAppointment removes the appointment with its clinical notes and
	// releases its slot.
	DeleteAppointment(ctx context.Context, id int64) error

	InsertNote(ctx context.Context, note ClinicalNote) (*ClinicalNote, error)
	ListNotesByRecipient(ctx context.Context, recipientID int64) ([]ClinicalNote, error)

	Stats(ctx context.Context) (*Stats, error)
}
