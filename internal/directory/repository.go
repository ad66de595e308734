package directory

import (
	"context"
	"errors"
)

var (
	ErrClinicNotFound    = errors.New("clinic not found")
	ErrProviderNotFound  = errors.New("provider not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrDuplicateName     = errors.New("clinic title already exists")
	ErrDuplicateEmail    = errors.New("email address already has an account")
	ErrDuplicateUID      = errors.New("generated identifier already exists")
)

type NewProvider struct {
	Email          string
	CredentialHash string
	GivenName      string
	Surname        string
	ClinicID       *int64
	Expertise      string
	Biography      string
}

type ProviderUpdate struct {
	Email     string
	GivenName string
	Surname   string
	ClinicID  *int64
	Expertise string
}

type NewRecipient struct {
	Email          string
	CredentialHash string
	GivenName      string
	Surname        string
	ClinicID       *int64
}

// Repository contains the reference-data persistence used by the directory
// service. Multi-row writes (provider creation, cascading deletes) are single
// transactions inside the implementation.
type Repository interface {
	ListClinics(ctx context.Context) ([]Clinic, error)
	GetClinic(ctx context.Context, id int64) (*Clinic, error)
	CreateClinic(ctx context.Context, title, notes string) (*Clinic, error)

	ListProviders(ctx context.Context) ([]Provider, error)
	ListProvidersByClinic(ctx context.Context, clinicID int64) ([]Provider, error)
	GetProvider(ctx context.Context, accountID int64) (*Provider, error)

	// CreateProvider inserts the account and profile, assigning the doctor
	// uid inline when a clinic is set.
	CreateProvider(ctx context.Context, in NewProvider) (*Provider, error)
	UpdateProvider(ctx context.Context, accountID int64, upd ProviderUpdate) (*Provider, error)

	// DeleteProvider removes the provider's clinical notes, appointments,
	// slots, profile and account in one transaction.
	DeleteProvider(ctx context.Context, accountID int64) error

	// AssignDoctorUID generates the provider uid if absent. Returns the
	// existing uid unchanged when one is already set, and "" without error
	// when the provider has no clinic.
	AssignDoctorUID(ctx context.Context, accountID int64) (string, error)

	ListRecipients(ctx context.Context) ([]Recipient, error)
	GetRecipient(ctx context.Context, accountID int64) (*Recipient, error)
	CreateRecipient(ctx context.Context, in NewRecipient) (*Recipient, error)
}
