package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-auth/internal/domain"
	"clinic-auth/internal/repository"
)

const createPatientsTable = `
CREATE TABLE IF NOT EXISTS patients (
	id TEXT PRIMARY KEY,
	subject_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE COLLATE NOCASE,
	gender TEXT NOT NULL DEFAULT '',
	birth_date TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_patients_name ON patients(name COLLATE NOCASE);
`

const selectPatient = `
SELECT id, subject_id, name, email, gender, birth_date, created_at, updated_at
FROM patients
`

type PatientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) repository.PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPatientsTable); err != nil {
		return fmt.Errorf("create patients table: %w", err)
	}
	return nil
}

func (r *PatientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO patients (id, subject_id, name, email, gender, birth_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		patient.ID,
		patient.SubjectID,
		patient.Name,
		patient.Email,
		patient.Gender,
		patient.BirthDate,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && strings.Contains(err.Error(), "email") {
			return fmt.Errorf("%w: %v", domain.ErrEmailTaken, err)
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	return scanPatient(r.db.QueryRowContext(ctx, selectPatient+`WHERE id = ?`, id))
}

func (r *PatientRepository) GetBySubject(ctx context.Context, subjectID string) (*domain.Patient, error) {
	return scanPatient(r.db.QueryRowContext(ctx, selectPatient+`WHERE subject_id = ?`, subjectID))
}

func (r *PatientRepository) GetByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	return scanPatient(r.db.QueryRowContext(ctx, selectPatient+`WHERE email = ?`, email))
}

func (r *PatientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM patients WHERE email = ?)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check patient email: %w", err)
	}
	return exists == 1, nil
}

func scanPatient(row rowScanner) (*domain.Patient, error) {
	var (
		patient   domain.Patient
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(
		&patient.ID,
		&patient.SubjectID,
		&patient.Name,
		&patient.Email,
		&patient.Gender,
		&patient.BirthDate,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	patient.CreatedAt = createdAt.UTC()
	patient.UpdatedAt = updatedAt.UTC()
	return &patient, nil
}
