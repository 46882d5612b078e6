package domain

import "time"

// Credential holds the password material for one subject.
type Credential struct {
	SubjectID    string
	PasswordHash string
	CreatedAt    time.Time
}
