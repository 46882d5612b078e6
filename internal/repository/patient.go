package repository

import (
	"context"

	"clinic-auth/internal/domain"
)

// PatientRepository exposes persistence operations for Patient profiles.
type PatientRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, patient *domain.Patient) error
	GetByID(ctx context.Context, id string) (*domain.Patient, error)
	GetBySubject(ctx context.Context, subjectID string) (*domain.Patient, error)
	GetByEmail(ctx context.Context, email string) (*domain.Patient, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ResolutionRepository manages doctor resolutions attached to patients.
type ResolutionRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, resolution *domain.Resolution) error
	Get(ctx context.Context, id string) (*domain.Resolution, error)
	ListByPatient(ctx context.Context, patientID string) ([]domain.Resolution, error)
	ListByPatientName(ctx context.Context, name string) ([]domain.Resolution, error)
	Delete(ctx context.Context, id string) error
}
