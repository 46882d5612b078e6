package domain

import "time"

// Patient is the profile record created for every signed up subject.
type Patient struct {
	ID        string
	SubjectID string
	Name      string
	Email     string
	Gender    string
	BirthDate string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPatient carries the fields needed to create a Patient.
type NewPatient struct {
	SubjectID string
	Name      string
	Email     string
	Gender    string
	BirthDate string
}

// ProfileKey selects a patient either by subject or by email.
// SubjectID wins when both are set.
type ProfileKey struct {
	SubjectID string
	Email     string
}

// Resolution is a doctor's note attached to a patient.
type Resolution struct {
	ID        string
	PatientID string
	Text      string
	CreatedAt time.Time
}
