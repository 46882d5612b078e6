package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"clinic-auth/internal/domain"
	"clinic-auth/internal/repository"
)

// PatientService keeps patient profiles and answers profile lookups.
type PatientService interface {
	ProfileStore
	GetBySubject(ctx context.Context, subjectID string) (*domain.Patient, error)
	GetByID(ctx context.Context, id string) (*domain.Patient, error)
}

type patientService struct {
	patients repository.PatientRepository
}

func NewPatientService(patients repository.PatientRepository) PatientService {
	return &patientService{patients: patients}
}

func (s *patientService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.patients.ExistsByEmail(ctx, normalizeEmail(email))
}

func (s *patientService) Create(ctx context.Context, in domain.NewPatient) (*domain.Patient, error) {
	patient := &domain.Patient{
		ID:        uuid.NewString(),
		SubjectID: in.SubjectID,
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		Gender:    strings.TrimSpace(in.Gender),
		BirthDate: strings.TrimSpace(in.BirthDate),
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *patientService) GetByKey(ctx context.Context, key domain.ProfileKey) (domain.Result[*domain.Patient], error) {
	var (
		patient *domain.Patient
		err     error
	)
	switch {
	case key.SubjectID != "":
		patient, err = s.patients.GetBySubject(ctx, key.SubjectID)
	case strings.TrimSpace(key.Email) != "":
		patient, err = s.patients.GetByEmail(ctx, normalizeEmail(key.Email))
	default:
		err = domain.ErrPatientNotFound
	}

	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			return domain.Fail[*domain.Patient](domain.StatusNotFound, domain.ErrPatientNotFound), nil
		}
		return domain.Result[*domain.Patient]{}, err
	}
	return domain.OK(domain.StatusOK, patient), nil
}

func (s *patientService) GetBySubject(ctx context.Context, subjectID string) (*domain.Patient, error) {
	return s.patients.GetBySubject(ctx, subjectID)
}

func (s *patientService) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
