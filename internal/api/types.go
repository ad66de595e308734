package api

import (
	"time"

	"github.com/hackgods/clinic-portal/internal/booking"
	"github.com/hackgods/clinic-portal/internal/directory"
	"github.com/hackgods/clinic-portal/internal/identity"
)

// Requests

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	GivenName       string `json:"given_name"`
	Surname         string `json:"surname"`
	ClinicID        *int64 `json:"clinic_id"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdateRequest struct {
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type CreateClinicRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

type CreateProviderRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
	ClinicID  *int64 `json:"clinic_id"`
	Expertise string `json:"expertise"`
	Biography string `json:"biography"`
}

type UpdateProviderRequest struct {
	Email     string `json:"email"`
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
	ClinicID  *int64 `json:"clinic_id"`
	Expertise string `json:"expertise"`
}

type CreatePatientRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	GivenName       string `json:"given_name"`
	Surname         string `json:"surname"`
	ClinicID        *int64 `json:"clinic_id"`
}

type CreateSlotRequest struct {
	StartsAt     time.Time `json:"starts_at"`
	DurationMins int       `json:"duration_mins"`
}

type BookRequest struct {
	SlotID int64 `json:"slot_id"`
}

type CreateAppointmentRequest struct {
	RecipientID int64     `json:"recipient_id"`
	ProviderID  int64     `json:"provider_id"`
	BookedAt    time.Time `json:"booked_at"`
}

type NoteRequest struct {
	Findings      string `json:"findings"`
	TreatmentPlan string `json:"treatment_plan"`
}

// Responses

type AccountResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
}

type TokenResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

type ClinicResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Notes string `json:"notes"`
}

type ProviderResponse struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	GivenName   string  `json:"given_name"`
	Surname     string  `json:"surname"`
	ClinicID    *int64  `json:"clinic_id,omitempty"`
	ClinicTitle *string `json:"clinic_title,omitempty"`
	Expertise   string  `json:"expertise"`
	Biography   string  `json:"biography"`
	DoctorUID   *string `json:"doctor_uid,omitempty"`
}

type RecipientResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	GivenName   string     `json:"given_name"`
	Surname     string     `json:"surname"`
	ClinicID    *int64     `json:"clinic_id,omitempty"`
	ClinicTitle *string    `json:"clinic_title,omitempty"`
	PatientUID  *string    `json:"patient_uid,omitempty"`
	FirstVisit  *time.Time `json:"first_visit,omitempty"`
}

type SlotResponse struct {
	ID           int64     `json:"id"`
	ProviderID   int64     `json:"provider_id"`
	StartsAt     time.Time `json:"starts_at"`
	DurationMins int       `json:"duration_mins"`
	Available    bool      `json:"available"`
}

type AppointmentResponse struct {
	ID          int64     `json:"id"`
	RecipientID int64     `json:"recipient_id"`
	ProviderID  int64     `json:"provider_id"`
	SlotID      *int64    `json:"slot_id,omitempty"`
	Code        *string   `json:"code,omitempty"`
	State       string    `json:"state"`
	BookedAt    time.Time `json:"booked_at"`
}

type NoteResponse struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointment_id"`
	RecipientID   int64     `json:"recipient_id"`
	ProviderID    int64     `json:"provider_id"`
	Findings      string    `json:"findings"`
	TreatmentPlan string    `json:"treatment_plan"`
	NotedAt       time.Time `json:"noted_at"`
}

type StatsResponse struct {
	Clinics      int64                 `json:"clinics"`
	Providers    int64                 `json:"providers"`
	Recipients   int64                 `json:"recipients"`
	Appointments int64                 `json:"appointments"`
	Recent       []AppointmentResponse `json:"recent"`
}

type DoctorUIDResponse struct {
	ProviderID int64   `json:"provider_id"`
	DoctorUID  *string `json:"doctor_uid"`
}

// Converters

func toAccountResponse(a *identity.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		GivenName: a.GivenName,
		Surname:   a.Surname,
		FullName:  a.FullName(),
		Role:      string(a.Role),
	}
}

func toClinicResponse(c *directory.Clinic) ClinicResponse {
	return ClinicResponse{ID: c.ID, Title: c.Title, Notes: c.Notes}
}

func toProviderResponse(p *directory.Provider) ProviderResponse {
	return ProviderResponse{
		ID:          p.AccountID,
		Email:       p.Email,
		GivenName:   p.GivenName,
		Surname:     p.Surname,
		ClinicID:    p.ClinicID,
		ClinicTitle: p.ClinicTitle,
		Expertise:   p.Expertise,
		Biography:   p.Biography,
		DoctorUID:   p.DoctorUID,
	}
}

func toRecipientResponse(r *directory.Recipient) RecipientResponse {
	return RecipientResponse{
		ID:          r.AccountID,
		Email:       r.Email,
		GivenName:   r.GivenName,
		Surname:     r.Surname,
		ClinicID:    r.ClinicID,
		ClinicTitle: r.ClinicTitle,
		PatientUID:  r.PatientUID,
		FirstVisit:  r.FirstVisit,
	}
}

func toSlotResponse(s *booking.TimeSlot) SlotResponse {
	return SlotResponse{
		ID:           s.ID,
		ProviderID:   s.ProviderID,
		StartsAt:     s.StartsAt,
		DurationMins: s.DurationMins,
		Available:    s.Available,
	}
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		RecipientID: a.RecipientID,
		ProviderID:  a.ProviderID,
		SlotID:      a.SlotID,
		Code:        a.Code,
		State:       string(a.State),
		BookedAt:    a.BookedAt,
	}
}

func toNoteResponse(n *booking.ClinicalNote) NoteResponse {
	return NoteResponse{
		ID:            n.ID,
		AppointmentID: n.AppointmentID,
		RecipientID:   n.RecipientID,
		ProviderID:    n.ProviderID,
		Findings:      n.Findings,
		TreatmentPlan: n.TreatmentPlan,
		NotedAt:       n.NotedAt,
	}
}

func toAppointmentResponses(list []booking.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(list))
	for i := range list {
		out = append(out, toAppointmentResponse(&list[i]))
	}
	return out
}

func toSlotResponses(list []booking.TimeSlot) []SlotResponse {
	out := make([]SlotResponse, 0, len(list))
	for i := range list {
		out = append(out, toSlotResponse(&list[i]))
	}
	return out
}

func toNoteResponses(list []booking.ClinicalNote) []NoteResponse {
	out := make([]NoteResponse, 0, len(list))
	for i := range list {
		out = append(out, toNoteResponse(&list[i]))
	}
	return out
}
