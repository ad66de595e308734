package booking

import (
	"fmt"
	"time"
)

// AppointmentCode derives the unique appointment code:
// APT{clinic:2}{DDMM}{recipient:5}{HHMM}. A patient with no clinic gets the
// "00" clinic portion. Unlike the doctor and patient uids this is not
// sequence-based; uniqueness comes from the (clinic, date, patient, time)
// tuple and is enforced by the unique index on the column.
func AppointmentCode(clinicID *int64, recipientID int64, bookedAt time.Time) string {
	clinic := "00"
	if clinicID != nil {
		clinic = fmt.Sprintf("%02d", *clinicID)
	}
	return fmt.Sprintf("APT%s%s%05d%s",
		clinic,
		bookedAt.Format("0201"),
		recipientID,
		bookedAt.Format("1504"),
	)
}
