package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-portal/internal/identity"
	"github.com/hackgods/clinic-portal/internal/metrics"
	redisclient "github.com/hackgods/clinic-portal/internal/redis"
)

var (
	ErrForbidden       = errors.New("caller is not allowed to perform this operation")
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
	ErrInvalidSlot     = errors.New("slot start time and duration must be set")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	log    zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, log zerolog.Logger) *Service {
	return &Service{repo: repo, locker: locker, log: log}
}

// Slots

// CreateSlot publishes a provider availability window. Overlap with the
// provider's other slots is not validated.
func (s *Service) CreateSlot(ctx context.Context, actor identity.Actor, startsAt time.Time, durationMins int) (*TimeSlot, error) {
	if actor.Role != identity.RoleProvider {
		return nil, ErrForbidden
	}
	if startsAt.IsZero() || durationMins <= 0 {
		return nil, ErrInvalidSlot
	}
	return s.repo.CreateSlot(ctx, actor.AccountID, startsAt, durationMins)
}

// ListOpenSlots returns a provider's bookable slots, for the patient-facing
// browse surface.
func (s *Service) ListOpenSlots(ctx context.Context, providerID int64) ([]TimeSlot, error) {
	return s.repo.ListSlotsByProvider(ctx, providerID, true)
}

// ListOwnSlots returns all of the calling provider's slots.
func (s *Service) ListOwnSlots(ctx context.Context, actor identity.Actor) ([]TimeSlot, error) {
	if actor.Role != identity.RoleProvider {
		return nil, ErrForbidden
	}
	return s.repo.ListSlotsByProvider(ctx, actor.AccountID, false)
}

// Booking

// Book reserves a slot for the calling patient. A per-slot lock plus the
// transactional row lock underneath guarantee that two concurrent requests
// for the same slot cannot both succeed. The created appointment carries no
// code; codes are only assigned on the admin path.
func (s *Service) Book(ctx context.Context, actor identity.Actor, slotID int64) (*Appointment, error) {
	if actor.Role != identity.RolePatient {
		return nil, ErrForbidden
	}

	var created *Appointment
	err := s.locker.WithLock(ctx, redisclient.SlotKey(slotID), func(lockCtx context.Context) error {
		appt, err := s.repo.BookSlot(lockCtx, actor.AccountID, slotID)
		if err != nil {
			return err
		}
		created = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			metrics.BookingConflictsTotal.Inc()
			return nil, ErrSlotBeingBooked
		}
		if errors.Is(err, ErrSlotUnavailable) || errors.Is(err, ErrSlotAlreadyBooked) {
			metrics.BookingConflictsTotal.Inc()
		}
		return nil, err
	}

	metrics.BookingsTotal.Inc()
	s.log.Info().
		Int64("appointment_id", created.ID).
		Int64("slot_id", slotID).
		Int64("recipient_id", actor.AccountID).
		Msg("appointment booked")

	return created, nil
}

// Cancel transitions a scheduled appointment to cancelled and releases its
// slot. Patients may cancel their own appointments, providers theirs,
// admins any.
func (s *Service) Cancel(ctx context.Context, actor identity.Actor, appointmentID int64) (*Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case identity.RolePatient:
		if appt.RecipientID != actor.AccountID {
			return nil, ErrForbidden
		}
	case identity.RoleProvider:
		if appt.ProviderID != actor.AccountID {
			return nil, ErrForbidden
		}
	case identity.RoleAdmin:
	default:
		return nil, ErrForbidden
	}

	cancelled, err := s.repo.CancelAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	metrics.CancellationsTotal.Inc()
	s.log.Info().Int64("appointment_id", appointmentID).Msg("appointment cancelled")
	return cancelled, nil
}

// Complete marks a scheduled appointment completed. Only the matching
// provider may do this; the slot stays consumed since its time has passed.
func (s *Service) Complete(ctx context.Context, actor identity.Actor, appointmentID int64) (*Appointment, error) {
	if actor.Role != identity.RoleProvider {
		return nil, ErrForbidden
	}

	appt, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.ProviderID != actor.AccountID {
		return nil, ErrForbidden
	}

	completed, err := s.repo.CompleteAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	metrics.CompletionsTotal.Inc()
	return completed, nil
}

// ListOwn returns the appointments visible to the caller: a patient's own,
// a provider's own, or everything for admins.
func (s *Service) ListOwn(ctx context.Context, actor identity.Actor) ([]Appointment, error) {
	switch actor.Role {
	case identity.RolePatient:
		return s.repo.ListAppointmentsByRecipient(ctx, actor.AccountID)
	case identity.RoleProvider:
		return s.repo.ListAppointmentsByProvider(ctx, actor.AccountID)
	case identity.RoleAdmin:
		return s.repo.ListAppointments(ctx, 100)
	}
	return nil, ErrForbidden
}

// Admin path

// CreateDirect creates an appointment without a slot, assigning the patient
// uid (when generatable) and the appointment code inline.
func (s *Service) CreateDirect(ctx context.Context, actor identity.Actor, recipientID, providerID int64, bookedAt time.Time) (*Appointment, error) {
	if actor.Role != identity.RoleAdmin {
		return nil, ErrForbidden
	}
	if bookedAt.IsZero() {
		return nil, fmt.Errorf("%w: booked time", ErrInvalidSlot)
	}

	appt, err := s.repo.CreateDirectAppointment(ctx, recipientID, providerID, bookedAt)
	if err != nil {
		return nil, err
	}

	ev := s.log.Info().Int64("appointment_id", appt.ID)
	if appt.Code != nil {
		ev = ev.Str("code", *appt.Code)
	}
	ev.Msg("appointment created by admin")

	return appt, nil
}

// Delete removes an appointment outright, freeing its slot when one is
// still reserved.
func (s *Service) Delete(ctx context.Context, actor identity.Actor, appointmentID int64) error {
	if actor.Role != identity.RoleAdmin {
		return ErrForbidden
	}
	return s.repo.DeleteAppointment(ctx, appointmentID)
}

// Clinical notes

// AddNote attaches a clinical note to one of the calling provider's
// appointments.
func (s *Service) AddNote(ctx context.Context, actor identity.Actor, appointmentID int64, findings, treatmentPlan string) (*ClinicalNote, error) {
	if actor.Role != identity.RoleProvider {
		return nil, ErrForbidden
	}

	appt, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.ProviderID != actor.AccountID {
		return nil, ErrForbidden
	}

	return s.repo.InsertNote(ctx, ClinicalNote{
		AppointmentID: appointmentID,
		RecipientID:   appt.RecipientID,
		ProviderID:    actor.AccountID,
		Findings:      findings,
		TreatmentPlan: treatmentPlan,
	})
}

// OwnHistory returns the calling patient's clinical notes.
func (s *Service) OwnHistory(ctx context.Context, actor identity.Actor) ([]ClinicalNote, error) {
	if actor.Role != identity.RolePatient {
		return nil, ErrForbidden
	}
	return s.repo.ListNotesByRecipient(ctx, actor.AccountID)
}

// RecipientHistory returns a patient's clinical notes for staff.
func (s *Service) RecipientHistory(ctx context.Context, actor identity.Actor, recipientID int64) ([]ClinicalNote, error) {
	if actor.Role != identity.RoleProvider && actor.Role != identity.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.repo.ListNotesByRecipient(ctx, recipientID)
}

// Stats backs the admin dashboard.
func (s *Service) DashboardStats(ctx context.Context, actor identity.Actor) (*Stats, error) {
	if actor.Role != identity.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.repo.Stats(ctx)
}
