package api

import (
	"net/http"

	"github.com/hackgods/clinic-portal/internal/booking"
)

func createSlotHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		var req CreateSlotRequest
		if !decodeBody(w, r, &req) {
			return
		}

		slot, err := svc.CreateSlot(r.Context(), actor, req.StartsAt, req.DurationMins)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSlotResponse(slot))
	}
}

func listOwnSlotsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		slots, err := svc.ListOwnSlots(r.Context(), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSlotResponses(slots))
	}
}

func completeAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		appt, err := svc.Complete(r.Context(), actor, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func addNoteHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		var req NoteRequest
		if !decodeBody(w, r, &req) {
			return
		}

		note, err := svc.AddNote(r.Context(), actor, id, req.Findings, req.TreatmentPlan)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toNoteResponse(note))
	}
}

func recipientHistoryHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		notes, err := svc.RecipientHistory(r.Context(), actor, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toNoteResponses(notes))
	}
}
