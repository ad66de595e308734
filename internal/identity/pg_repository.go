package identity

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

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	var tierName string

	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.CredentialHash,
		&a.GivenName,
		&a.Surname,
		&tierName,
		&a.Enabled,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	role, err := ParseRole(tierName)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", a.ID, err)
	}
	a.Role = role

	return &a, nil
}

const accountColumns = `
	a.id, a.email, a.credential_hash, a.given_name, a.surname,
	l.tier_name, a.enabled, a.created_at`

func (r *PgRepository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+accountColumns+`
		FROM accounts a
		JOIN access_levels l ON l.tier_id = a.tier_id
		WHERE a.email = $1
	`, email)
	return scanAccount(row)
}

func (r *PgRepository) GetAccountByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+accountColumns+`
		FROM accounts a
		JOIN access_levels l ON l.tier_id = a.tier_id
		WHERE a.id = $1
	`, id)
	return scanAccount(row)
}

func (r *PgRepository) CreatePatientAccount(ctx context.Context, in NewPatientAccount) (*Account, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO accounts (email, credential_hash, given_name, surname, tier_id)
		VALUES ($1, $2, $3, $4, (SELECT tier_id FROM access_levels WHERE tier_name = 'patient'))
		RETURNING id
	`, in.Email, in.CredentialHash, in.GivenName, in.Surname).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO recipients (account_id, clinic_id)
		VALUES ($1, $2)
	`, id, in.ClinicID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrUnknownClinic
		}
		return nil, fmt.Errorf("insert recipient profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return r.GetAccountByID(ctx, id)
}

func (r *PgRepository) UpdateProfile(ctx context.Context, id int64, givenName, surname string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET given_name = $2, surname = $3
		WHERE id = $1
	`, id, givenName, surname)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PgRepository) UpdateCredential(ctx context.Context, id int64, credentialHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET credential_hash = $2
		WHERE id = $1
	`, id, credentialHash)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
