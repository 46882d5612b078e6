package repository

import (
	"context"

	"clinic-auth/internal/domain"
)

// CredentialRepository defines persistence operations for Credential records.
type CredentialRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, cred *domain.Credential) error
	GetBySubject(ctx context.Context, subjectID string) (*domain.Credential, error)
	Delete(ctx context.Context, subjectID string) error
}
