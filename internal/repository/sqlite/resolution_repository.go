package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clinic-auth/internal/domain"
	"clinic-auth/internal/repository"
)

const createResolutionsTable = `
CREATE TABLE IF NOT EXISTS resolutions (
	id TEXT PRIMARY KEY,
	patient_id TEXT NOT NULL,
	text TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(patient_id) REFERENCES patients(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_resolutions_patient_id ON resolutions(patient_id);
`

type ResolutionRepository struct {
	db *sql.DB
}

func NewResolutionRepository(db *sql.DB) repository.ResolutionRepository {
	return &ResolutionRepository{db: db}
}

func (r *ResolutionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createResolutionsTable); err != nil {
		return fmt.Errorf("create resolutions table: %w", err)
	}
	return nil
}

func (r *ResolutionRepository) Create(ctx context.Context, resolution *domain.Resolution) error {
	if resolution.CreatedAt.IsZero() {
		resolution.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO resolutions (id, patient_id, text, created_at)
VALUES (?, ?, ?, ?)`,
		resolution.ID,
		resolution.PatientID,
		resolution.Text,
		resolution.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resolution: %w", err)
	}
	return nil
}

func (r *ResolutionRepository) Get(ctx context.Context, id string) (*domain.Resolution, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, patient_id, text, created_at
FROM resolutions
WHERE id=?`, id)

	var res domain.Resolution
	if err := row.Scan(&res.ID, &res.PatientID, &res.Text, &res.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResolutionNotFound
		}
		return nil, fmt.Errorf("scan resolution: %w", err)
	}
	res.CreatedAt = res.CreatedAt.UTC()
	return &res, nil
}

func (r *ResolutionRepository) ListByPatient(ctx context.Context, patientID string) ([]domain.Resolution, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, patient_id, text, created_at
FROM resolutions
WHERE patient_id=?
ORDER BY created_at DESC, id ASC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query resolutions: %w", err)
	}
	return scanResolutions(rows)
}

func (r *ResolutionRepository) ListByPatientName(ctx context.Context, name string) ([]domain.Resolution, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT r.id, r.patient_id, r.text, r.created_at
FROM resolutions r
JOIN patients p ON p.id = r.patient_id
WHERE p.name = ? COLLATE NOCASE
ORDER BY r.created_at DESC, r.id ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("query resolutions by name: %w", err)
	}
	return scanResolutions(rows)
}

func (r *ResolutionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM resolutions WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete resolution: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolution delete rows affected: %w", err)
	}
	if aff == 0 {
		return domain.ErrResolutionNotFound
	}
	return nil
}

func scanResolutions(rows *sql.Rows) ([]domain.Resolution, error) {
	defer rows.Close()

	resolutions := []domain.Resolution{}
	for rows.Next() {
		var res domain.Resolution
		if err := rows.Scan(&res.ID, &res.PatientID, &res.Text, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		res.CreatedAt = res.CreatedAt.UTC()
		resolutions = append(resolutions, res)
	}
	return resolutions, rows.Err()
}
