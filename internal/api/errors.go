package api

import (
	"errors"
	"net/http"

	"github.com/hackgods/clinic-portal/internal/booking"
	"github.com/hackgods/clinic-portal/internal/directory"
	"github.com/hackgods/clinic-portal/internal/identity"
	redisclient "github.com/hackgods/clinic-portal/internal/redis"
)

// writeDomainError maps domain sentinels onto HTTP status codes. Anything
// unrecognized is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	// Not found
	case errors.Is(err, identity.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, directory.ErrClinicNotFound):
		writeError(w, http.StatusNotFound, "clinic_not_found", err.Error())
	case errors.Is(err, directory.ErrProviderNotFound),
		errors.Is(err, booking.ErrProviderNotFound):
		writeError(w, http.StatusNotFound, "provider_not_found", err.Error())
	case errors.Is(err, directory.ErrRecipientNotFound),
		errors.Is(err, booking.ErrRecipientNotFound):
		writeError(w, http.StatusNotFound, "recipient_not_found", err.Error())
	case errors.Is(err, booking.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())

	// Uniqueness
	case errors.Is(err, identity.ErrDuplicateEmail),
		errors.Is(err, directory.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "duplicate_email", err.Error())
	case errors.Is(err, directory.ErrDuplicateName):
		writeError(w, http.StatusConflict, "duplicate_name", err.Error())
	case errors.Is(err, directory.ErrDuplicateUID),
		errors.Is(err, booking.ErrDuplicateCode):
		writeError(w, http.StatusConflict, "duplicate_identifier", err.Error())

	// Booking conflicts and state
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", err.Error())
	case errors.Is(err, booking.ErrSlotAlreadyBooked):
		writeError(w, http.StatusConflict, "slot_already_booked", err.Error())
	case errors.Is(err, booking.ErrSlotBeingBooked),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state", err.Error())

	// Authorization
	case errors.Is(err, booking.ErrForbidden),
		errors.Is(err, directory.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrAccountDisabled):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())

	// Validation
	case errors.Is(err, identity.ErrPasswordMismatch),
		errors.Is(err, identity.ErrWrongPassword),
		errors.Is(err, identity.ErrMissingRequired),
		errors.Is(err, identity.ErrUnknownClinic),
		errors.Is(err, directory.ErrMissingField),
		errors.Is(err, booking.ErrInvalidSlot):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
