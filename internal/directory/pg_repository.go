package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/clinic-portal/internal/db"
)

type PgRepository struct {
	pool db.Querier
}

func NewPgRepository(pool db.Querier) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic
	err := row.Scan(&c.ID, &c.Title, &c.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClinicNotFound
		}
		return nil, err
	}
	return &c, nil
}

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(
		&p.AccountID,
		&p.Email,
		&p.GivenName,
		&p.Surname,
		&p.ClinicID,
		&p.ClinicTitle,
		&p.Expertise,
		&p.Biography,
		&p.DoctorUID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanRecipient(row pgx.Row) (*Recipient, error) {
	var r Recipient
	err := row.Scan(
		&r.AccountID,
		&r.Email,
		&r.GivenName,
		&r.Surname,
		&r.ClinicID,
		&r.ClinicTitle,
		&r.PatientUID,
		&r.FirstVisit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	return &r, nil
}

const providerQuery = `
	SELECT a.id, a.email, a.given_name, a.surname,
	       p.clinic_id, c.title, p.expertise, p.biography, p.doctor_uid
	FROM providers p
	JOIN accounts a ON a.id = p.account_id
	LEFT JOIN clinics c ON c.id = p.clinic_id`

const recipientQuery = `
	SELECT a.id, a.email, a.given_name, a.surname,
	       r.clinic_id, c.title, r.patient_uid, r.first_visit
	FROM recipients r
	JOIN accounts a ON a.id = r.account_id
	LEFT JOIN clinics c ON c.id = r.clinic_id`

// Clinics

func (r *PgRepository) ListClinics(ctx context.Context) ([]Clinic, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, notes FROM clinics ORDER BY title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Clinic
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetClinic(ctx context.Context, id int64) (*Clinic, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, notes FROM clinics WHERE id = $1
	`, id)
	return scanClinic(row)
}

func (r *PgRepository) CreateClinic(ctx context.Context, title, notes string) (*Clinic, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clinics (title, notes)
		VALUES ($1, $2)
		RETURNING id, title, notes
	`, title, notes)
	c, err := scanClinic(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return c, nil
}

// Providers

func (r *PgRepository) ListProviders(ctx context.Context) ([]Provider, error) {
	return r.queryProviders(ctx, providerQuery+` ORDER BY a.surname, a.given_name`)
}

func (r *PgRepository) ListProvidersByClinic(ctx context.Context, clinicID int64) ([]Provider, error) {
	return r.queryProviders(ctx, providerQuery+` WHERE p.clinic_id = $1 ORDER BY a.surname, a.given_name`, clinicID)
}

func (r *PgRepository) queryProviders(ctx context.Context, sql string, args ...any) ([]Provider, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetProvider(ctx context.Context, accountID int64) (*Provider, error) {
	row := r.pool.QueryRow(ctx, providerQuery+` WHERE p.account_id = $1`, accountID)
	return scanProvider(row)
}

func (r *PgRepository) CreateProvider(ctx context.Context, in NewProvider) (*Provider, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var accountID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO accounts (email, credential_hash, given_name, surname, tier_id)
		VALUES ($1, $2, $3, $4, (SELECT tier_id FROM access_levels WHERE tier_name = 'provider'))
		RETURNING id
	`, in.Email, in.CredentialHash, in.GivenName, in.Surname).Scan(&accountID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO providers (account_id, clinic_id, expertise, biography)
		VALUES ($1, $2, $3, $4)
	`, accountID, in.ClinicID, in.Expertise, in.Biography)
	if err != nil {
		return nil, fmt.Errorf("insert provider profile: %w", err)
	}

	if in.ClinicID != nil {
		if _, err := assignDoctorUIDTx(ctx, tx, accountID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return r.GetProvider(ctx, accountID)
}

// assignDoctorUIDTx allocates the next sequence number in the clinic scope
// and stores the derived uid. Callers hold the provider row transactionally.
func assignDoctorUIDTx(ctx context.Context, tx pgx.Tx, accountID int64) (string, error) {
	var existing *string
	var clinicID *int64
	var clinicTitle *string
	err := tx.QueryRow(ctx, `
		SELECT p.doctor_uid, p.clinic_id, c.title
		FROM providers p
		LEFT JOIN clinics c ON c.id = p.clinic_id
		WHERE p.account_id = $1
		FOR UPDATE OF p
	`, accountID).Scan(&existing, &clinicID, &clinicTitle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrProviderNotFound
		}
		return "", fmt.Errorf("load provider for uid assignment: %w", err)
	}

	if existing != nil {
		return *existing, nil
	}
	if clinicID == nil || clinicTitle == nil {
		return "", nil
	}

	seq, err := db.NextSequence(ctx, tx, DoctorScope(*clinicID))
	if err != nil {
		return "", err
	}

	uid := DoctorUID(ClinicCode(*clinicTitle), seq)
	_, err = tx.Exec(ctx, `
		UPDATE providers SET doctor_uid = $2 WHERE account_id = $1
	`, accountID, uid)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return "", ErrDuplicateUID
		}
		return "", fmt.Errorf("store doctor uid: %w", err)
	}

	return uid, nil
}

func (r *PgRepository) AssignDoctorUID(ctx context.Context, accountID int64) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	uid, err := assignDoctorUIDTx(ctx, tx, accountID)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}
	return uid, nil
}

func (r *PgRepository) UpdateProvider(ctx context.Context, accountID int64, upd ProviderUpdate) (*Provider, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE accounts SET email = $2, given_name = $3, surname = $4
		WHERE id = $1
	`, accountID, upd.Email, upd.GivenName, upd.Surname)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrProviderNotFound
	}

	tag, err = tx.Exec(ctx, `
		UPDATE providers SET clinic_id = $2, expertise = $3
		WHERE account_id = $1
	`, accountID, upd.ClinicID, upd.Expertise)
	if err != nil {
		return nil, fmt.Errorf("update provider profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrProviderNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return r.GetProvider(ctx, accountID)
}

func (r *PgRepository) DeleteProvider(ctx context.Context, accountID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM clinical_notes WHERE provider_id = $1`, accountID); err != nil {
		return fmt.Errorf("delete clinical notes: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM appointments WHERE provider_id = $1`, accountID); err != nil {
		return fmt.Errorf("delete appointments: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM time_slots WHERE provider_id = $1`, accountID); err != nil {
		return fmt.Errorf("delete time slots: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM providers WHERE account_id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProviderNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Recipients

func (r *PgRepository) ListRecipients(ctx context.Context) ([]Recipient, error) {
	rows, err := r.pool.Query(ctx, recipientQuery+` ORDER BY a.surname, a.given_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Recipient
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetRecipient(ctx context.Context, accountID int64) (*Recipient, error) {
	row := r.pool.QueryRow(ctx, recipientQuery+` WHERE r.account_id = $1`, accountID)
	return scanRecipient(row)
}

func (r *PgRepository) CreateRecipient(ctx context.Context, in NewRecipient) (*Recipient, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var accountID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO accounts (email, credential_hash, given_name, surname, tier_id)
		VALUES ($1, $2, $3, $4, (SELECT tier_id FROM access_levels WHERE tier_name = 'patient'))
		RETURNING id
	`, in.Email, in.CredentialHash, in.GivenName, in.Surname).Scan(&accountID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO recipients (account_id, clinic_id)
		VALUES ($1, $2)
	`, accountID, in.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("insert recipient profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return r.GetRecipient(ctx, accountID)
}
