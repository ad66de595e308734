package identity

import (
	"strings"
	"time"
)

type Account struct {
	ID             int64
	Email          string
	CredentialHash string
	GivenName      string
	Surname        string
	Role           Role
	Enabled        bool
	CreatedAt      time.Time
}

func (a *Account) FullName() string {
	return strings.TrimSpace(a.GivenName + " " + a.Surname)
}
