package booking

import "time"

// State is the appointment lifecycle. Scheduled is the only non-terminal
// state; completed and cancelled admit no further transitions.
type State string

const (
	StateScheduled State = "scheduled"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

type TimeSlot struct {
	ID           int64
	ProviderID   int64
	StartsAt     time.Time
	DurationMins int
	Available    bool
}

type Appointment struct {
	ID          int64
	RecipientID int64
	ProviderID  int64
	SlotID      *int64
	Code        *string
	State       State
	BookedAt    time.Time
}

type ClinicalNote struct {
	ID            int64
	AppointmentID int64
	RecipientID   int64
	ProviderID    int64
	Findings      string
	TreatmentPlan string
	NotedAt       time.Time
}

// Stats backs the admin dashboard.
type Stats struct {
	Clinics      int64
	Providers    int64
	Recipients   int64
	Appointments int64
	Recent       []Appointment
}
