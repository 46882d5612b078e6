package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"clinic-auth/internal/domain"
	"clinic-auth/internal/repository"
)

// bcrypt refuses longer input
const maxPasswordBytes = 72

// CredentialService stores bcrypt password hashes keyed by subject id.
type CredentialService struct {
	creds repository.CredentialRepository
	cost  int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewCredentialService(creds repository.CredentialRepository, cost int) *CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialService{
		creds: creds,
		cost:  cost,
	}
}

func (s *CredentialService) Create(ctx context.Context, password string) (*domain.Credential, error) {
	if strings.TrimSpace(password) == "" {
		return nil, domain.ErrEmptyPassword
	}
	if len(password) > maxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	cred := &domain.Credential{
		SubjectID:    uuid.NewString(),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		return nil, err
	}
	return cred, nil
}

// Verify reports whether password matches the stored hash. An unknown subject
// is a mismatch and still pays for one bcrypt comparison.
func (s *CredentialService) Verify(ctx context.Context, subjectID, password string) (bool, error) {
	if len(password) > maxPasswordBytes {
		return false, nil
	}
	cred, err := s.creds.GetBySubject(ctx, subjectID)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.fallbackHash(), []byte(password))
			return false, nil
		}
		return false, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}

func (s *CredentialService) Delete(ctx context.Context, subjectID string) error {
	return s.creds.Delete(ctx, subjectID)
}

func (s *CredentialService) fallbackHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.cost)
	})
	return s.dummyHash
}

var _ CredentialStore = (*CredentialService)(nil)
