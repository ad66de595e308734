package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/clinic-portal/internal/db"
	"github.com/hackgods/clinic-portal/internal/directory"
)

type PgRepository struct {
	pool db.Querier
}

func NewPgRepository(pool db.Querier) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanSlot(row pgx.Row) (*TimeSlot, error) {
	var s TimeSlot
	err := row.Scan(&s.ID, &s.ProviderID, &s.StartsAt, &s.DurationMins, &s.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.RecipientID, &a.ProviderID, &a.SlotID, &a.Code, &a.State, &a.BookedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func scanNote(row pgx.Row) (*ClinicalNote, error) {
	var n ClinicalNote
	err := row.Scan(&n.ID, &n.AppointmentID, &n.RecipientID, &n.ProviderID, &n.Findings, &n.TreatmentPlan, &n.NotedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

const slotColumns = `id, provider_id, starts_at, duration_mins, available`
const appointmentColumns = `id, recipient_id, provider_id, slot_id, code, state, booked_at`

// Slots

func (r *PgRepository) CreateSlot(ctx context.Context, providerID int64, startsAt time.Time, durationMins int) (*TimeSlot, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO time_slots (provider_id, starts_at, duration_mins, available)
		VALUES ($1, $2, $3, true)
		RETURNING `+slotColumns+`
	`, providerID, startsAt, durationMins)
	return scanSlot(row)
}

func (r *PgRepository) ListSlotsByProvider(ctx context.Context, providerID int64, onlyOpen bool) ([]TimeSlot, error) {
	sql := `SELECT ` + slotColumns + ` FROM time_slots WHERE provider_id = $1`
	if onlyOpen {
		sql += ` AND available`
	}
	sql += ` ORDER BY starts_at`

	rows, err := r.pool.Query(ctx, sql, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TimeSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// Booking

func (r *PgRepository) BookSlot(ctx context.Context, recipientID, slotID int64) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Row lock on the slot serializes concurrent reservation attempts even
	// without the Redis lock above this call.
	slot, err := scanSlot(tx.QueryRow(ctx, `
		SELECT `+slotColumns+` FROM time_slots WHERE id = $1 FOR UPDATE
	`, slotID))
	if err != nil {
		return nil, err
	}
	if !slot.Available {
		return nil, ErrSlotUnavailable
	}

	// Defense in depth: the availability flag should already reflect this,
	// but a live appointment on the slot always wins.
	var taken bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments WHERE slot_id = $1 AND state <> 'cancelled'
		)
	`, slotID).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("check slot appointments: %w", err)
	}
	if taken {
		return nil, ErrSlotAlreadyBooked
	}

	appt, err := scanAppointment(tx.QueryRow(ctx, `
		INSERT INTO appointments (recipient_id, provider_id, slot_id, state, booked_at)
		VALUES ($1, $2, $3, 'scheduled', now())
		RETURNING `+appointmentColumns+`
	`, recipientID, slot.ProviderID, slotID))
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE time_slots SET available = false WHERE id = $1
	`, slotID); err != nil {
		return nil, fmt.Errorf("reserve slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return appt, nil
}

// Appointments

func (r *PgRepository) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+` FROM appointments WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListAppointmentsByRecipient(ctx context.Context, recipientID int64) ([]Appointment, error) {
	return r.queryAppointments(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE recipient_id = $1
		ORDER BY booked_at DESC
	`, recipientID)
}

func (r *PgRepository) ListAppointmentsByProvider(ctx context.Context, providerID int64) ([]Appointment, error) {
	return r.queryAppointments(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE provider_id = $1
		ORDER BY booked_at DESC
	`, providerID)
}

func (r *PgRepository) ListAppointments(ctx context.Context, limit int) ([]Appointment, error) {
	return r.queryAppointments(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		ORDER BY booked_at DESC
		LIMIT $1
	`, limit)
}

func (r *PgRepository) queryAppointments(ctx context.Context, sql string, args ...any) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *PgRepository) CancelAppointment(ctx context.Context, id int64) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	appt, err := casAppointmentState(ctx, tx, id, StateScheduled, StateCancelled)
	if err != nil {
		return nil, err
	}

	// Free the slot for rebooking. A missing or already-available slot is
	// not an error.
	if appt.SlotID != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE time_slots SET available = true WHERE id = $1
		`, *appt.SlotID); err != nil {
			return nil, fmt.Errorf("release slot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return appt, nil
}

func (r *PgRepository) CompleteAppointment(ctx context.Context, id int64) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	appt, err := casAppointmentState(ctx, tx, id, StateScheduled, StateCompleted)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return appt, nil
}

// casAppointmentState performs a compare-and-set state transition. No row
// updated means the appointment is either absent or in a terminal state.
func casAppointmentState(ctx context.Context, tx pgx.Tx, id int64, from, to State) (*Appointment, error) {
	appt, err := scanAppointment(tx.QueryRow(ctx, `
		UPDATE appointments
		SET state = $2
		WHERE id = $1 AND state = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from))
	if err == nil {
		return appt, nil
	}
	if !errors.Is(err, ErrAppointmentNotFound) {
		return nil, fmt.Errorf("update appointment state: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)
	`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check appointment: %w", err)
	}
	if !exists {
		return nil, ErrAppointmentNotFound
	}
	return nil, ErrInvalidState
}

func (r *PgRepository) CreateDirectAppointment(ctx context.Context, recipientID, providerID int64, bookedAt time.Time) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var clinicID *int64
	var patientUID *string
	var clinicTitle *string
	err = tx.QueryRow(ctx, `
		SELECT r.clinic_id, r.patient_uid, c.title
		FROM recipients r
		LEFT JOIN clinics c ON c.id = r.clinic_id
		WHERE r.account_id = $1
		FOR UPDATE OF r
	`, recipientID).Scan(&clinicID, &patientUID, &clinicTitle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("load recipient: %w", err)
	}

	var providerExists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM providers WHERE account_id = $1)
	`, providerID).Scan(&providerExists); err != nil {
		return nil, fmt.Errorf("check provider: %w", err)
	}
	if !providerExists {
		return nil, ErrProviderNotFound
	}

	// First appointment for a clinic-assigned patient mints the patient uid
	// and pins the first-visit date. An already-assigned uid is never
	// overwritten.
	if patientUID == nil && clinicID != nil && clinicTitle != nil {
		date := bookedAt
		seq, err := db.NextSequence(ctx, tx, directory.PatientScope(*clinicID, date))
		if err != nil {
			return nil, err
		}
		uid := directory.PatientUID(directory.ClinicCode(*clinicTitle), date, seq)
		if _, err := tx.Exec(ctx, `
			UPDATE recipients SET patient_uid = $2, first_visit = $3 WHERE account_id = $1
		`, recipientID, uid, date); err != nil {
			if db.IsUniqueViolation(err) {
				return nil, directory.ErrDuplicateUID
			}
			return nil, fmt.Errorf("store patient uid: %w", err)
		}
	}

	code := AppointmentCode(clinicID, recipientID, bookedAt)
	appt, err := scanAppointment(tx.QueryRow(ctx, `
		INSERT INTO appointments (recipient_id, provider_id, code, state, booked_at)
		VALUES ($1, $2, $3, 'scheduled', $4)
		RETURNING `+appointmentColumns+`
	`, recipientID, providerID, code, bookedAt))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return appt, nil
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	appt, err := scanAppointment(tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE
	`, id))
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM clinical_notes WHERE appointment_id = $1
	`, id); err != nil {
		return fmt.Errorf("delete clinical notes: %w", err)
	}

	if appt.SlotID != nil && appt.State == StateScheduled {
		if _, err := tx.Exec(ctx, `
			UPDATE time_slots SET available = true WHERE id = $1
		`, *appt.SlotID); err != nil {
			return fmt.Errorf("release slot: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM appointments WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Clinical notes

func (r *PgRepository) InsertNote(ctx context.Context, note ClinicalNote) (*ClinicalNote, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clinical_notes (appointment_id, recipient_id, provider_id, findings, treatment_plan)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, appointment_id, recipient_id, provider_id, findings, treatment_plan, noted_at
	`, note.AppointmentID, note.RecipientID, note.ProviderID, note.Findings, note.TreatmentPlan)
	return scanNote(row)
}

func (r *PgRepository) ListNotesByRecipient(ctx context.Context, recipientID int64) ([]ClinicalNote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, appointment_id, recipient_id, provider_id, findings, treatment_plan, noted_at
		FROM clinical_notes
		WHERE recipient_id = $1
		ORDER BY noted_at DESC
	`, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ClinicalNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	return result, rows.Err()
}

// Stats

func (r *PgRepository) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM clinics),
			(SELECT count(*) FROM providers),
			(SELECT count(*) FROM recipients),
			(SELECT count(*) FROM appointments)
	`).Scan(&st.Clinics, &st.Providers, &st.Recipients, &st.Appointments)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}

	recent, err := r.ListAppointments(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("recent appointments: %w", err)
	}
	st.Recent = recent

	return &st, nil
}
