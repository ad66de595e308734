package api

import (
	"net/http"

	"github.com/hackgods/clinic-portal/internal/booking"
	"github.com/hackgods/clinic-portal/internal/directory"
)

func adminStatsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		stats, err := svc.DashboardStats(r.Context(), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, StatsResponse{
			Clinics:      stats.Clinics,
			Providers:    stats.Providers,
			Recipients:   stats.Recipients,
			Appointments: stats.Appointments,
			Recent:       toAppointmentResponses(stats.Recent),
		})
	}
}

func createClinicHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		var req CreateClinicRequest
		if !decodeBody(w, r, &req) {
			return
		}

		clinic, err := svc.CreateClinic(r.Context(), actor, req.Title, req.Notes)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toClinicResponse(clinic))
	}
}

func listProvidersHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers, err := svc.ListProviders(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]ProviderResponse, 0, len(providers))
		for i := range providers {
			out = append(out, toProviderResponse(&providers[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createProviderHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		var req CreateProviderRequest
		if !decodeBody(w, r, &req) {
			return
		}

		provider, err := svc.CreateProvider(r.Context(), actor, directory.ProviderRegistration{
			Email:     req.Email,
			Password:  req.Password,
			GivenName: req.GivenName,
			Surname:   req.Surname,
			ClinicID:  req.ClinicID,
			Expertise: req.Expertise,
			Biography: req.Biography,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toProviderResponse(provider))
	}
}

func updateProviderHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		var req UpdateProviderRequest
		if !decodeBody(w, r, &req) {
			return
		}

		provider, err := svc.UpdateProvider(r.Context(), actor, id, directory.ProviderUpdate{
			Email:     req.Email,
			GivenName: req.GivenName,
			Surname:   req.Surname,
			ClinicID:  req.ClinicID,
			Expertise: req.Expertise,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProviderResponse(provider))
	}
}

func deleteProviderHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		if err := svc.DeleteProvider(r.Context(), actor, id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func assignDoctorUIDHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		uid, err := svc.AssignDoctorUID(r.Context(), actor, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := DoctorUIDResponse{ProviderID: id}
		if uid != "" {
			resp.DoctorUID = &uid
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func listRecipientsHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		recipients, err := svc.ListRecipients(r.Context(), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]RecipientResponse, 0, len(recipients))
		for i := range recipients {
			out = append(out, toRecipientResponse(&recipients[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createPatientHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		var req CreatePatientRequest
		if !decodeBody(w, r, &req) {
			return
		}

		recipient, err := svc.CreatePatient(r.Context(), actor, directory.PatientRegistration{
			Email:           req.Email,
			Password:        req.Password,
			PasswordConfirm: req.PasswordConfirm,
			GivenName:       req.GivenName,
			Surname:         req.Surname,
			ClinicID:        req.ClinicID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toRecipientResponse(recipient))
	}
}

func adminCreateAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		var req CreateAppointmentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		appt, err := svc.CreateDirect(r.Context(), actor, req.RecipientID, req.ProviderID, req.BookedAt)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func adminDeleteAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
