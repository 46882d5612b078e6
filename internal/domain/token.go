package domain

import "time"

// Claims is the decoded content of a session token.
type Claims struct {
	SubjectID string
	ExpiresAt time.Time
}
