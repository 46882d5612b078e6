package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clinic-auth/internal/domain"
	"clinic-auth/internal/repository"
	"clinic-auth/internal/storage"
)

// ErrEmptyResolution is returned when a resolution has no text.
var ErrEmptyResolution = errors.New("resolution text is required")

// ResolutionService manages doctor resolutions for patients.
type ResolutionService interface {
	AddResolution(ctx context.Context, patientID, text string) (*domain.Resolution, error)
	FindByPatientName(ctx context.Context, name string) ([]domain.Resolution, error)
	ListForPatient(ctx context.Context, patientID string) ([]domain.Resolution, error)
	DeleteResolution(ctx context.Context, id string) (string, error)
}

type resolutionService struct {
	resolutions repository.ResolutionRepository
	patients    repository.PatientRepository
	archive     storage.Archive
	logger      *logrus.Logger
}

// NewResolutionService builds the service. archive may be nil, in which case
// deleted resolutions are not archived.
func NewResolutionService(resolutions repository.ResolutionRepository, patients repository.PatientRepository, archive storage.Archive, logger *logrus.Logger) ResolutionService {
	if logger == nil {
		logger = logrus.New()
	}
	return &resolutionService{
		resolutions: resolutions,
		patients:    patients,
		archive:     archive,
		logger:      logger,
	}
}

func (s *resolutionService) AddResolution(ctx context.Context, patientID, text string) (*domain.Resolution, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResolution
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	res := &domain.Resolution{
		ID:        uuid.NewString(),
		PatientID: patientID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.resolutions.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *resolutionService) FindByPatientName(ctx context.Context, name string) ([]domain.Resolution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []domain.Resolution{}, nil
	}
	return s.resolutions.ListByPatientName(ctx, name)
}

func (s *resolutionService) ListForPatient(ctx context.Context, patientID string) ([]domain.Resolution, error) {
	return s.resolutions.ListByPatient(ctx, patientID)
}

type archivedResolution struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	ArchivedAt time.Time `json:"archived_at"`
}

// DeleteResolution removes a resolution, archiving it first when an archive is
// configured. It returns the archive location, empty when not archived.
func (s *resolutionService) DeleteResolution(ctx context.Context, id string) (string, error) {
	res, err := s.resolutions.Get(ctx, id)
	if err != nil {
		return "", err
	}

	var location string
	if s.archive != nil {
		body, err := json.Marshal(archivedResolution{
			ID:         res.ID,
			PatientID:  res.PatientID,
			Text:       res.Text,
			CreatedAt:  res.CreatedAt,
			ArchivedAt: time.Now().UTC(),
		})
		if err != nil {
			return "", fmt.Errorf("encode resolution: %w", err)
		}
		location, err = s.archive.PutDocument(ctx, storage.ResolutionKey(res.PatientID, res.ID), body, "application/json")
		if err != nil {
			return "", fmt.Errorf("archive resolution: %w", err)
		}
	}

	if err := s.resolutions.Delete(ctx, id); err != nil {
		return "", err
	}
	s.logger.WithField("resolution_id", id).Infof("resolution deleted (archive: %q)", location)
	return location, nil
}
