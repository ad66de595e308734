package directory

import (
	"fmt"
	"time"
	"unicode"
)

// ClinicCode derives the short department code from a clinic title: the
// first rune of each whitespace-separated word, uppercased, capped at four
// characters. "Ear Nose Throat" -> "ENT", "Cardiology" -> "C". Empty or
// all-whitespace titles yield "".
func ClinicCode(title string) string {
	var runes []rune
	inWord := false
	for _, r := range title {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			runes = append(runes, unicode.ToUpper(r))
			if len(runes) == 4 {
				break
			}
		}
		inWord = true
	}
	return string(runes)
}

// DoctorUID formats a provider identifier: {code}-{seq} with the sequence
// zero-padded to three digits, e.g. "C-001".
func DoctorUID(code string, seq int64) string {
	return fmt.Sprintf("%s-%03d", code, seq)
}

// PatientUID formats a patient identifier scoped to clinic and first
// appointment date: {code}-{DDMMYY}-{seq}, e.g. "C-290125-001".
func PatientUID(code string, date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%03d", code, date.Format("020106"), seq)
}

// DoctorScope and PatientScope key the id_sequences counters. Doctor uids
// are numbered per clinic; patient uids per (clinic, first appointment date).
func DoctorScope(clinicID int64) string {
	return fmt.Sprintf("doctor:%d", clinicID)
}

func PatientScope(clinicID int64, date time.Time) string {
	return fmt.Sprintf("patient:%d:%s", clinicID, date.Format("020106"))
}
