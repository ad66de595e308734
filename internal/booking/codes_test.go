package booking

import (
	"testing"
	"time"
)

func TestAppointmentCode(t *testing.T) {
	bookedAt := time.Date(2025, time.January, 29, 14, 30, 0, 0, time.UTC)

	clinic := int64(5)
	if got := AppointmentCode(&clinic, 42, bookedAt); got != "APT052901000421430" {
		t.Fatalf("AppointmentCode = %q, want APT052901000421430", got)
	}
}

func TestAppointmentCodeNoClinic(t *testing.T) {
	bookedAt := time.Date(2025, time.March, 2, 9, 5, 0, 0, time.UTC)

	if got := AppointmentCode(nil, 7, bookedAt); got != "APT000203000070905" {
		t.Fatalf("AppointmentCode = %q, want APT000203000070905", got)
	}
}
