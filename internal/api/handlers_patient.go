package api

import (
	"net/http"

	"github.com/hackgods/clinic-portal/internal/booking"
	"github.com/hackgods/clinic-portal/internal/directory"
)

func patientProfileHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		recipient, err := svc.GetRecipient(r.Context(), actor, actor.AccountID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRecipientResponse(recipient))
	}
}

func listClinicsHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinics, err := svc.ListClinics(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]ClinicResponse, 0, len(clinics))
		for i := range clinics {
			out = append(out, toClinicResponse(&clinics[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listClinicProvidersHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		providers, err := svc.ListProvidersByClinic(r.Context(), clinicID)
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

func listOpenSlotsHandler(dirSvc *directory.Service, bookSvc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		if _, err := dirSvc.GetProvider(r.Context(), providerID); err != nil {
			writeDomainError(w, err)
			return
		}

		slots, err := bookSvc.ListOpenSlots(r.Context(), providerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSlotResponses(slots))
	}
}

func bookAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		var req BookRequest
		if !decodeBody(w, r, &req) {
			return
		}

		appt, err := svc.Book(r.Context(), actor, req.SlotID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func listOwnAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		appts, err := svc.ListOwn(r.Context(), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func cancelAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		appt, err := svc.Cancel(r.Context(), actor, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func ownHistoryHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		notes, err := svc.OwnHistory(r.Context(), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toNoteResponses(notes))
	}
}
