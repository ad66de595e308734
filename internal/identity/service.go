package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrMissingRequired    = errors.New("email and password are required")
)

type Service struct {
	repo       Repository
	tokens     *TokenManager
	bcryptCost int
	log        zerolog.Logger
}

func NewService(repo Repository, tokens *TokenManager, bcryptCost int, log zerolog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, tokens: tokens, bcryptCost: bcryptCost, log: log}
}

type Registration struct {
	Email           string
	Password        string
	PasswordConfirm string
	GivenName       string
	Surname         string
	ClinicID        *int64
}

// Register creates a patient account with its recipient profile.
func (s *Service) Register(ctx context.Context, reg Registration) (*Account, error) {
	if reg.Email == "" || reg.Password == "" {
		return nil, ErrMissingRequired
	}
	if reg.Password != reg.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}

	acct, err := s.repo.CreatePatientAccount(ctx, NewPatientAccount{
		Email:          reg.Email,
		CredentialHash: string(hash),
		GivenName:      reg.GivenName,
		Surname:        reg.Surname,
		ClinicID:       reg.ClinicID,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("account_id", acct.ID).Msg("patient account registered")
	return acct, nil
}

// Authenticate verifies the credential and returns a signed session token
// for the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *Account, error) {
	acct, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// Burn a comparable amount of time on unknown emails so response
			// latency does not reveal whether the address exists.
			_, _ = bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.CredentialHash), []byte(password)); err != nil {
		s.log.Warn().Str("email", email).Msg("failed signin attempt")
		return "", nil, ErrInvalidCredentials
	}

	if !acct.Enabled {
		return "", nil, ErrAccountDisabled
	}

	token, err := s.tokens.Issue(Actor{AccountID: acct.ID, Email: acct.Email, Role: acct.Role})
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, acct, nil
}

func (s *Service) GetAccount(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetAccountByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, actor Actor, givenName, surname string) error {
	return s.repo.UpdateProfile(ctx, actor.AccountID, givenName, surname)
}

// ChangePassword verifies the current credential before storing the new one.
func (s *Service) ChangePassword(ctx context.Context, actor Actor, current, next, confirm string) error {
	acct, err := s.repo.GetAccountByID(ctx, actor.AccountID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.CredentialHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}
	if next == "" {
		return ErrMissingRequired
	}
	if next != confirm {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash credential: %w", err)
	}

	return s.repo.UpdateCredential(ctx, actor.AccountID, string(hash))
}
