package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-portal/internal/identity"
	redisclient "github.com/hackgods/clinic-portal/internal/redis"
)

// memRepo is an in-memory Repository with the same reservation semantics as
// the Postgres implementation: one mutex stands in for the row lock.
type memRepo struct {
	mu           sync.Mutex
	nextSlotID   int64
	nextApptID   int64
	nextNoteID   int64
	slots        map[int64]*TimeSlot
	appointments map[int64]*Appointment
	notes        []ClinicalNote
}

func newMemRepo() *memRepo {
	return &memRepo{
		slots:        make(map[int64]*TimeSlot),
		appointments: make(map[int64]*Appointment),
	}
}

func (m *memRepo) CreateSlot(_ context.Context, providerID int64, startsAt time.Time, durationMins int) (*TimeSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSlotID++
	s := &TimeSlot{ID: m.nextSlotID, ProviderID: providerID, StartsAt: startsAt, DurationMins: durationMins, Available: true}
	m.slots[s.ID] = s
	copied := *s
	return &copied, nil
}

func (m *memRepo) ListSlotsByProvider(_ context.Context, providerID int64, onlyOpen bool) ([]TimeSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []TimeSlot
	for _, s := range m.slots {
		if s.ProviderID != providerID {
			continue
		}
		if onlyOpen && !s.Available {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *memRepo) BookSlot(_ context.Context, recipientID, slotID int64) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[slotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	if !s.Available {
		return nil, ErrSlotUnavailable
	}
	for _, a := range m.appointments {
		if a.SlotID != nil && *a.SlotID == slotID && a.State != StateCancelled {
			return nil, ErrSlotAlreadyBooked
		}
	}

	m.nextApptID++
	sid := slotID
	a := &Appointment{
		ID:          m.nextApptID,
		RecipientID: recipientID,
		ProviderID:  s.ProviderID,
		SlotID:      &sid,
		State:       StateScheduled,
		BookedAt:    time.Now(),
	}
	m.appointments[a.ID] = a
	s.Available = false
	copied := *a
	return &copied, nil
}

func (m *memRepo) GetAppointment(_ context.Context, id int64) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memRepo) ListAppointmentsByRecipient(_ context.Context, recipientID int64) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.appointments {
		if a.RecipientID == recipientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memRepo) ListAppointmentsByProvider(_ context.Context, providerID int64) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.appointments {
		if a.ProviderID == providerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memRepo) ListAppointments(_ context.Context, limit int) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.appointments {
		if len(out) == limit {
			break
		}
		out = append(out, *a)
	}
	return out, nil
}

func (m *memRepo) CancelAppointment(_ context.Context, id int64) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if a.State != StateScheduled {
		return nil, ErrInvalidState
	}
	a.State = StateCancelled
	if a.SlotID != nil {
		if s, ok := m.slots[*a.SlotID]; ok {
			s.Available = true
		}
	}
	copied := *a
	return &copied, nil
}

func (m *memRepo) CompleteAppointment(_ context.Context, id int64) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if a.State != StateScheduled {
		return nil, ErrInvalidState
	}
	a.State = StateCompleted
	copied := *a
	return &copied, nil
}

func (m *memRepo) CreateDirectAppointment(_ context.Context, recipientID, providerID int64, bookedAt time.Time) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextApptID++
	code := AppointmentCode(nil, recipientID, bookedAt)
	a := &Appointment{
		ID:          m.nextApptID,
		RecipientID: recipientID,
		ProviderID:  providerID,
		Code:        &code,
		State:       StateScheduled,
		BookedAt:    bookedAt,
	}
	m.appointments[a.ID] = a
	copied := *a
	return &copied, nil
}

func (m *memRepo) DeleteAppointment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	if a.State == StateScheduled && a.SlotID != nil {
		if s, ok := m.slots[*a.SlotID]; ok {
			s.Available = true
		}
	}
	delete(m.appointments, id)
	return nil
}

func (m *memRepo) InsertNote(_ context.Context, note ClinicalNote) (*ClinicalNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextNoteID++
	note.ID = m.nextNoteID
	note.NotedAt = time.Now()
	m.notes = append(m.notes, note)
	copied := note
	return &copied, nil
}

func (m *memRepo) ListNotesByRecipient(_ context.Context, recipientID int64) ([]ClinicalNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ClinicalNote
	for _, n := range m.notes {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memRepo) Stats(_ context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &Stats{Appointments: int64(len(m.appointments))}, nil
}

// passLocker runs the critical section directly.
type passLocker struct{}

func (passLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// heldLocker simulates a contended lock.
type heldLocker struct{}

func (heldLocker) WithLock(context.Context, string, func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

var _ redisclient.Locker = passLocker{}

func newTestService(repo Repository, locker redisclient.Locker) *Service {
	return NewService(repo, locker, zerolog.Nop())
}

var (
	patient  = identity.Actor{AccountID: 101, Email: "pat@example.com", Role: identity.RolePatient}
	patient2 = identity.Actor{AccountID: 102, Email: "pat2@example.com", Role: identity.RolePatient}
	provider = identity.Actor{AccountID: 201, Email: "doc@example.com", Role: identity.RoleProvider}
	admin    = identity.Actor{AccountID: 301, Email: "admin@example.com", Role: identity.RoleAdmin}
)

func mustCreateSlot(t *testing.T, svc *Service) *TimeSlot {
	t.Helper()
	slot, err := svc.CreateSlot(context.Background(), provider, time.Now().Add(24*time.Hour), 30)
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot
}

func TestBookSlot(t *testing.T) {
	svc := newTestService(newMemRepo(), passLocker{})
	slot := mustCreateSlot(t, svc)

	appt, err := svc.Book(context.Background(), patient, slot.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if appt.State != StateScheduled {
		t.Fatalf("expected scheduled, got %s", appt.State)
	}
	if appt.ProviderID != provider.AccountID {
		t.Fatalf("provider mismatch: %d", appt.ProviderID)
	}
	if appt.Code != nil {
		t.Fatalf("self-service booking must not assign a code, got %q", *appt.Code)
	}

	open, err := svc.ListOpenSlots(context.Background(), provider.AccountID)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("booked slot still listed as open: %v", open)
	}
}

func TestBookSlotTwiceRejected(t *testing.T) {
	svc := newTestService(newMemRepo(), passLocker{})
	slot := mustCreateSlot(t, svc)

	if _, err := svc.Book(context.Background(), patient, slot.ID); err != nil {
		t.Fatalf("first book: %v", err)
	}
	if _, err := svc.Book(context.Background(), patient2, slot.ID); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestBookContendedLock(t *testing.T) {
	svc := newTestService(newMemRepo(), heldLocker{})

	if _, err := svc.Book(context.Background(), patient, 1); !errors.Is(err, ErrSlotBeingBooked) {
		t.Fatalf("expected ErrSlotBeingBooked, got %v", err)
	}
}

func TestBookConcurrent(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, passLocker{})
	slot := mustCreateSlot(t, svc)

	const attempts = 20
	errs := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		actor := identity.Actor{AccountID: int64(1000 + i), Role: identity.RolePatient}
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), actor, slot.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, ErrSlotUnavailable) && !errors.Is(err, ErrSlotAlreadyBooked) {
			t.Fatalf("unexpected booking error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful booking, got %d", succeeded)
	}
}

func TestCancelReleasesSlot(t *testing.T) {
	svc := newTestService(newMemRepo(), passLocker{})
	slot := mustCreateSlot(t, svc)

	appt, err := svc.Book(context.Background(), patient, slot.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), patient, appt.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.State != StateCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.State)
	}

	// The released slot is bookable again.
	if _, err := svc.Book(context.Background(), patient2, slot.ID); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestCancelOwnership(t *testing.T) {
	svc := newTestService(newMemRepo(), passLocker{})
	slot := mustCreateSlot(t, svc)

	appt, err := svc.Book(context.Background(), patient, slot.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), patient2, appt.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another patient, got %v", err)
	}

	// Admin may cancel anyone's appointment.
	if _, err := svc.Cancel(context.Background(), admin, appt.ID); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}

func TestCancelUnknownRoleRejected(t *testing.T) {
	svc := newTestService(newMemRepo(), passLocker{})
	slot := mustCreateSlot(t, svc)

	appt, err := svc.Book(context.Background(), patient, slot.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	stranger := identity.Actor{AccountID: 500, Role: identity.Role("auditor")}
	if _, err := svc.Cancel(context.Background(), stranger, appt.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unrecognized role, got %v", err)
	}
	if _, err := svc.Cancel(context.Background(), identity.Actor{AccountID: 501}, appt.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for zero-value role, got %v", err)
	}
}

func TestTerminalStatesLocked(t *testing.T) {
	svc := newTestService(newMemRepo(), passLocker{})
	slot := mustCreateSlot(t, svc)

	appt, err := svc.Book(context.Background(), patient, slot.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.Complete(context.Background(), provider, appt.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), patient, appt.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState cancelling a completed appointment, got %v", err)
	}
	if _, err := svc.Complete(context.Background(), provider, appt.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState completing twice, got %v", err)
	}
}

func TestCompleteRequiresMatchingProvider(t *testing.T) {
	svc := newTestService(newMemRepo(), passLocker{})
	slot := mustCreateSlot(t, svc)

	appt, err := svc.Book(context.Background(), patient, slot.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	other := identity.Actor{AccountID: 999, Role: identity.RoleProvider}
	if _, err := svc.Complete(context.Background(), other, appt.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Complete(context.Background(), patient, appt.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for patient caller, got %v", err)
	}
}

func TestRoleGates(t *testing.T) {
	svc := newTestService(newMemRepo(), passLocker{})

	if _, err := svc.CreateSlot(context.Background(), patient, time.Now(), 30); !errors.Is(err, ErrForbidden) {
		t.Fatalf("patient created a slot: %v", err)
	}
	if _, err := svc.Book(context.Background(), provider, 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("provider booked a slot: %v", err)
	}
	if _, err := svc.CreateDirect(context.Background(), provider, 1, 2, time.Now()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("provider created a direct appointment: %v", err)
	}
	if err := svc.Delete(context.Background(), patient, 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("patient deleted an appointment: %v", err)
	}
	if _, err := svc.DashboardStats(context.Background(), provider); !errors.Is(err, ErrForbidden) {
		t.Fatalf("provider read dashboard stats: %v", err)
	}
	if _, err := svc.OwnHistory(context.Background(), provider); !errors.Is(err, ErrForbidden) {
		t.Fatalf("provider read patient history surface: %v", err)
	}
	if _, err := svc.RecipientHistory(context.Background(), patient, 5); !errors.Is(err, ErrForbidden) {
		t.Fatalf("patient read another recipient's history: %v", err)
	}
}

func TestCreateSlotValidation(t *testing.T) {
	svc := newTestService(newMemRepo(), passLocker{})

	if _, err := svc.CreateSlot(context.Background(), provider, time.Time{}, 30); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot for zero start, got %v", err)
	}
	if _, err := svc.CreateSlot(context.Background(), provider, time.Now(), 0); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot for zero duration, got %v", err)
	}
}

func TestAddNoteRequiresMatchingProvider(t *testing.T) {
	svc := newTestService(newMemRepo(), passLocker{})
	slot := mustCreateSlot(t, svc)

	appt, err := svc.Book(context.Background(), patient, slot.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	note, err := svc.AddNote(context.Background(), provider, appt.ID, "mild inflammation", "rest and fluids")
	if err != nil {
		t.Fatalf("add note: %v", err)
	}
	if note.RecipientID != patient.AccountID {
		t.Fatalf("note recipient mismatch: %d", note.RecipientID)
	}

	other := identity.Actor{AccountID: 999, Role: identity.RoleProvider}
	if _, err := svc.AddNote(context.Background(), other, appt.ID, "x", "y"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	history, err := svc.OwnHistory(context.Background(), patient)
	if err != nil {
		t.Fatalf("own history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one note, got %d", len(history))
	}
}

func TestDeleteReleasesReservedSlot(t *testing.T) {
	svc := newTestService(newMemRepo(), passLocker{})
	slot := mustCreateSlot(t, svc)

	appt, err := svc.Book(context.Background(), patient, slot.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if err := svc.Delete(context.Background(), admin, appt.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Book(context.Background(), patient2, slot.ID); err != nil {
		t.Fatalf("rebook after delete: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), admin, appt.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}
