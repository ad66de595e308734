package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/clinic-portal/internal/identity"
)

var (
	ErrForbidden    = errors.New("caller is not allowed to perform this operation")
	ErrMissingField = errors.New("required field is missing")
)

type Service struct {
	repo       Repository
	bcryptCost int
	log        zerolog.Logger
}

func NewService(repo Repository, bcryptCost int, log zerolog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bcryptCost: bcryptCost, log: log}
}

func requireAdmin(actor identity.Actor) error {
	if actor.Role != identity.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// Reads, available to any authenticated caller.

func (s *Service) ListClinics(ctx context.Context) ([]Clinic, error) {
	return s.repo.ListClinics(ctx)
}

func (s *Service) GetClinic(ctx context.Context, id int64) (*Clinic, error) {
	return s.repo.GetClinic(ctx, id)
}

func (s *Service) ListProvidersByClinic(ctx context.Context, clinicID int64) ([]Provider, error) {
	if _, err := s.repo.GetClinic(ctx, clinicID); err != nil {
		return nil, err
	}
	return s.repo.ListProvidersByClinic(ctx, clinicID)
}

func (s *Service) ListProviders(ctx context.Context) ([]Provider, error) {
	return s.repo.ListProviders(ctx)
}

func (s *Service) GetProvider(ctx context.Context, accountID int64) (*Provider, error) {
	return s.repo.GetProvider(ctx, accountID)
}

// GetRecipient returns a patient profile. Patients may only read their own.
func (s *Service) GetRecipient(ctx context.Context, actor identity.Actor, accountID int64) (*Recipient, error) {
	if actor.Role == identity.RolePatient && actor.AccountID != accountID {
		return nil, ErrForbidden
	}
	return s.repo.GetRecipient(ctx, accountID)
}

func (s *Service) ListRecipients(ctx context.Context, actor identity.Actor) ([]Recipient, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListRecipients(ctx)
}

// Admin-managed writes.

func (s *Service) CreateClinic(ctx context.Context, actor identity.Actor, title, notes string) (*Clinic, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title", ErrMissingField)
	}

	clinic, err := s.repo.CreateClinic(ctx, title, notes)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("clinic_id", clinic.ID).Str("title", clinic.Title).Msg("clinic created")
	return clinic, nil
}

type ProviderRegistration struct {
	Email     string
	Password  string
	GivenName string
	Surname   string
	ClinicID  *int64
	Expertise string
	Biography string
}

func (s *Service) CreateProvider(ctx context.Context, actor identity.Actor, reg ProviderRegistration) (*Provider, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if reg.Email == "" || reg.Password == "" {
		return nil, fmt.Errorf("%w: email and password", ErrMissingField)
	}
	if reg.ClinicID != nil {
		if _, err := s.repo.GetClinic(ctx, *reg.ClinicID); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}

	provider, err := s.repo.CreateProvider(ctx, NewProvider{
		Email:          reg.Email,
		CredentialHash: string(hash),
		GivenName:      reg.GivenName,
		Surname:        reg.Surname,
		ClinicID:       reg.ClinicID,
		Expertise:      reg.Expertise,
		Biography:      reg.Biography,
	})
	if err != nil {
		return nil, err
	}

	ev := s.log.Info().Int64("provider_id", provider.AccountID)
	if provider.DoctorUID != nil {
		ev = ev.Str("doctor_uid", *provider.DoctorUID)
	}
	ev.Msg("provider registered")

	return provider, nil
}

func (s *Service) UpdateProvider(ctx context.Context, actor identity.Actor, accountID int64, upd ProviderUpdate) (*Provider, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if upd.Email == "" {
		return nil, fmt.Errorf("%w: email", ErrMissingField)
	}
	if upd.ClinicID != nil {
		if _, err := s.repo.GetClinic(ctx, *upd.ClinicID); err != nil {
			return nil, err
		}
	}
	return s.repo.UpdateProvider(ctx, accountID, upd)
}

// DeleteProvider removes the provider together with its appointments,
// slots, clinical notes and account.
func (s *Service) DeleteProvider(ctx context.Context, actor identity.Actor, accountID int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteProvider(ctx, accountID); err != nil {
		return err
	}
	s.log.Info().Int64("provider_id", accountID).Msg("provider deleted")
	return nil
}

// AssignDoctorUID generates the provider's uid if it has not been assigned
// yet. An empty result with nil error means the provider has no clinic and
// no identifier was assigned.
func (s *Service) AssignDoctorUID(ctx context.Context, actor identity.Actor, accountID int64) (string, error) {
	if err := requireAdmin(actor); err != nil {
		return "", err
	}
	return s.repo.AssignDoctorUID(ctx, accountID)
}

type PatientRegistration struct {
	Email           string
	Password        string
	PasswordConfirm string
	GivenName       string
	Surname         string
	ClinicID        *int64
}

// CreatePatient registers a patient without an initial appointment; the
// patient uid stays unassigned until the first appointment is created.
func (s *Service) CreatePatient(ctx context.Context, actor identity.Actor, reg PatientRegistration) (*Recipient, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if reg.Email == "" || reg.Password == "" {
		return nil, fmt.Errorf("%w: email and password", ErrMissingField)
	}
	if reg.Password != reg.PasswordConfirm {
		return nil, identity.ErrPasswordMismatch
	}
	if reg.ClinicID != nil {
		if _, err := s.repo.GetClinic(ctx, *reg.ClinicID); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}

	recipient, err := s.repo.CreateRecipient(ctx, NewRecipient{
		Email:          reg.Email,
		CredentialHash: string(hash),
		GivenName:      reg.GivenName,
		Surname:        reg.Surname,
		ClinicID:       reg.ClinicID,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("recipient_id", recipient.AccountID).Msg("patient registered")
	return recipient, nil
}
