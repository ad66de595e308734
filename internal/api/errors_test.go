package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-portal/internal/booking"
	"github.com/hackgods/clinic-portal/internal/directory"
	"github.com/hackgods/clinic-portal/internal/identity"
)

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{booking.ErrSlotNotFound, http.StatusNotFound, "slot_not_found"},
		{booking.ErrAppointmentNotFound, http.StatusNotFound, "appointment_not_found"},
		{directory.ErrClinicNotFound, http.StatusNotFound, "clinic_not_found"},
		{booking.ErrSlotUnavailable, http.StatusConflict, "slot_unavailable"},
		{booking.ErrSlotAlreadyBooked, http.StatusConflict, "slot_already_booked"},
		{booking.ErrSlotBeingBooked, http.StatusConflict, "slot_being_booked"},
		{booking.ErrInvalidState, http.StatusConflict, "invalid_state"},
		{identity.ErrDuplicateEmail, http.StatusConflict, "duplicate_email"},
		{directory.ErrDuplicateName, http.StatusConflict, "duplicate_name"},
		{booking.ErrForbidden, http.StatusForbidden, "forbidden"},
		{directory.ErrForbidden, http.StatusForbidden, "forbidden"},
		{identity.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{identity.ErrPasswordMismatch, http.StatusUnprocessableEntity, "validation_error"},
		{booking.ErrInvalidSlot, http.StatusUnprocessableEntity, "validation_error"},
		{errors.New("database exploded"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.wantCode+"/"+tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.wantCode, body.Error)
		})
	}
}

func TestWriteDomainErrorUnwrapsChains(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, fmt.Errorf("booking failed: %w", booking.ErrSlotUnavailable))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
