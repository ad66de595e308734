package identity

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicateEmail  = errors.New("email address already has an account")
	ErrUnknownClinic   = errors.New("clinic does not exist")
)

// NewPatientAccount carries everything needed to register a patient in one
// transaction: the account row plus the recipient profile with its clinic.
type NewPatientAccount struct {
	Email          string
	CredentialHash string
	GivenName      string
	Surname        string
	ClinicID       *int64
}

// Repository contains the account persistence needed by the identity service.
type Repository interface {
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	GetAccountByID(ctx context.Context, id int64) (*Account, error)

	// CreatePatientAccount inserts the account and the recipient profile
	// atomically.
	CreatePatientAccount(ctx context.Context, in NewPatientAccount) (*Account, error)

	UpdateProfile(ctx context.Context, id int64, givenName, surname string) error
	UpdateCredential(ctx context.Context, id int64, credentialHash string) error
}
