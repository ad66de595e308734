package directory

import (
	"strings"
	"time"
)

type Clinic struct {
	ID    int64
	Title string
	Notes string
}

// Provider is a clinical staff profile joined with its account fields.
type Provider struct {
	AccountID   int64
	Email       string
	GivenName   string
	Surname     string
	ClinicID    *int64
	ClinicTitle *string
	Expertise   string
	Biography   string
	DoctorUID   *string
}

func (p *Provider) DisplayName() string {
	return strings.TrimSpace(p.GivenName + " " + p.Surname)
}

// Recipient is a patient profile joined with its account fields. FirstVisit
// is the appointment date captured when the patient uid was generated.
type Recipient struct {
	AccountID   int64
	Email       string
	GivenName   string
	Surname     string
	ClinicID    *int64
	ClinicTitle *string
	PatientUID  *string
	FirstVisit  *time.Time
}

func (r *Recipient) DisplayName() string {
	return strings.TrimSpace(r.GivenName + " " + r.Surname)
}
