package domain

import "errors"

var (
	// ErrEmailExists is returned by signup when the email is already registered.
	ErrEmailExists = errors.New("email already exists")
	// ErrWrongEmail hides a sign-in lookup miss so account existence does not leak.
	ErrWrongEmail = errors.New("wrong email")
	// ErrWrongPassword indicates a credential mismatch on sign-in.
	ErrWrongPassword = errors.New("wrong password")
	// ErrMissingToken is returned when no token was presented.
	ErrMissingToken = errors.New("token is required")
	// ErrInvalidToken covers malformed, expired and badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptyPassword is returned when a credential is created without a password.
	ErrEmptyPassword = errors.New("password is required")
	// ErrPasswordTooLong is returned for passwords over the bcrypt input limit of 72 bytes.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

	// ErrPatientNotFound is returned by stores when no patient matches.
	ErrPatientNotFound = errors.New("patient not found")
	// ErrEmailTaken is returned by stores when the email uniqueness constraint is violated.
	ErrEmailTaken = errors.New("email already taken")
	// ErrCredentialNotFound is returned by stores when no credential matches.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrResolutionNotFound is returned when no resolution matches.
	ErrResolutionNotFound = errors.New("resolution not found")
	// ErrQueueEmpty is returned when the waiting queue has no patients.
	ErrQueueEmpty = errors.New("queue is empty")
)
