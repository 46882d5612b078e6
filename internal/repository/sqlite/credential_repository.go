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

const createCredentialsTable = `
CREATE TABLE IF NOT EXISTS credentials (
	subject_id TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) repository.CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCredentialsTable); err != nil {
		return fmt.Errorf("create credentials table: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO credentials (subject_id, password_hash, created_at)
VALUES (?, ?, ?)`,
		cred.SubjectID,
		cred.PasswordHash,
		cred.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) GetBySubject(ctx context.Context, subjectID string) (*domain.Credential, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT subject_id, password_hash, created_at
FROM credentials
WHERE subject_id = ?`,
		subjectID,
	)

	var cred domain.Credential
	if err := row.Scan(&cred.SubjectID, &cred.PasswordHash, &cred.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}
	return &cred, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, subjectID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE subject_id=?`, subjectID)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("credential delete rows affected: %w", err)
	}
	if aff == 0 {
		return domain.ErrCredentialNotFound
	}
	return nil
}
