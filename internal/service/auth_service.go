package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"clinic-auth/internal/domain"
)

// CredentialStore owns password material.
type CredentialStore interface {
	Create(ctx context.Context, password string) (*domain.Credential, error)
	// Verify returns false for a wrong password; errors mean the store failed.
	Verify(ctx context.Context, subjectID, password string) (bool, error)
	Delete(ctx context.Context, subjectID string) error
}

// ProfileStore owns patient profiles. Create must reject duplicate emails with
// domain.ErrEmailTaken.
type ProfileStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, in domain.NewPatient) (*domain.Patient, error)
	GetByKey(ctx context.Context, key domain.ProfileKey) (domain.Result[*domain.Patient], error)
}

// TokenService issues and verifies session tokens.
type TokenService interface {
	Issue(ctx context.Context, subjectID string) (string, error)
	Verify(ctx context.Context, token string) (domain.Claims, error)
}

// SignUpInput is an already validated signup payload.
type SignUpInput struct {
	Name      string
	Email     string
	Password  string
	Gender    string
	BirthDate string
}

// SignInInput identifies the account by subject id or email.
type SignInInput struct {
	SubjectID string
	Email     string
	Password  string
}

// AuthService runs the signup, sign-in and token check workflows.
//
// Business outcomes are reported in the returned Result. The error return is
// reserved for infrastructure failures of a collaborator.
type AuthService interface {
	CreateNewUser(ctx context.Context, password string) (domain.Result[*domain.Credential], error)
	SignUpNewProfile(ctx context.Context, in SignUpInput) (domain.Result[*domain.Patient], error)
	SignInUser(ctx context.Context, in SignInInput) (domain.Result[string], error)
	CheckToken(ctx context.Context, token string) (domain.Result[domain.Claims], error)
}

const compensationTimeout = 5 * time.Second

type authService struct {
	creds    CredentialStore
	profiles ProfileStore
	tokens   TokenService
	logger   *logrus.Logger
}

func NewAuthService(creds CredentialStore, profiles ProfileStore, tokens TokenService, logger *logrus.Logger) AuthService {
	if logger == nil {
		logger = logrus.New()
	}
	return &authService{
		creds:    creds,
		profiles: profiles,
		tokens:   tokens,
		logger:   logger,
	}
}

func (s *authService) CreateNewUser(ctx context.Context, password string) (domain.Result[*domain.Credential], error) {
	cred, err := s.creds.Create(ctx, password)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyPassword) || errors.Is(err, domain.ErrPasswordTooLong) {
			return domain.Fail[*domain.Credential](domain.StatusBadRequest, err), nil
		}
		return domain.Result[*domain.Credential]{}, fmt.Errorf("create credential: %w", err)
	}
	return domain.OK(domain.StatusCreated, cred), nil
}

func (s *authService) SignUpNewProfile(ctx context.Context, in SignUpInput) (domain.Result[*domain.Patient], error) {
	exists, err := s.profiles.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return domain.Result[*domain.Patient]{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.Fail[*domain.Patient](domain.StatusBadRequest, domain.ErrEmailExists), nil
	}

	created, err := s.CreateNewUser(ctx, in.Password)
	if err != nil {
		return domain.Result[*domain.Patient]{}, err
	}
	if created.Failed() {
		return domain.Fail[*domain.Patient](created.Status, created.Err), nil
	}
	cred := created.Value

	patient, err := s.profiles.Create(ctx, domain.NewPatient{
		SubjectID: cred.SubjectID,
		Name:      in.Name,
		Email:     in.Email,
		Gender:    in.Gender,
		BirthDate: in.BirthDate,
	})
	if err != nil {
		if cerr := s.discardCredential(ctx, cred.SubjectID); cerr != nil {
			return domain.Result[*domain.Patient]{}, errors.Join(
				fmt.Errorf("create patient: %w", err),
				fmt.Errorf("discard credential %s: %w", cred.SubjectID, cerr),
			)
		}
		// lost a race against a concurrent signup with the same email
		if errors.Is(err, domain.ErrEmailTaken) {
			return domain.Fail[*domain.Patient](domain.StatusBadRequest, domain.ErrEmailExists), nil
		}
		return domain.Result[*domain.Patient]{}, fmt.Errorf("create patient: %w", err)
	}

	s.logger.WithField("subject_id", patient.SubjectID).Info("patient signed up")
	return domain.OK(domain.StatusCreated, patient), nil
}

// discardCredential removes a credential whose profile could not be created.
// It runs even when ctx is already cancelled.
func (s *authService) discardCredential(ctx context.Context, subjectID string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	logger := s.logger.WithField("subject_id", subjectID)
	if err := s.creds.Delete(ctx, subjectID); err != nil {
		logger.Errorf("orphaned credential left behind: %v", err)
		return err
	}
	logger.Warn("profile creation failed, credential discarded")
	return nil
}

func (s *authService) SignInUser(ctx context.Context, in SignInInput) (domain.Result[string], error) {
	lookup, err := s.profiles.GetByKey(ctx, domain.ProfileKey{SubjectID: in.SubjectID, Email: in.Email})
	if err != nil {
		return domain.Result[string]{}, fmt.Errorf("get patient: %w", err)
	}
	if lookup.Failed() || lookup.Value == nil {
		return domain.Fail[string](domain.StatusForbidden, domain.ErrWrongEmail), nil
	}
	subjectID := lookup.Value.SubjectID

	ok, err := s.creds.Verify(ctx, subjectID, in.Password)
	if err != nil {
		return domain.Result[string]{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.WithField("subject_id", subjectID).Debug("sign-in rejected")
		return domain.Fail[string](domain.StatusForbidden, domain.ErrWrongPassword), nil
	}

	token, err := s.tokens.Issue(ctx, subjectID)
	if err != nil {
		return domain.Result[string]{}, fmt.Errorf("issue token: %w", err)
	}
	return domain.OK(domain.StatusOK, token), nil
}

func (s *authService) CheckToken(ctx context.Context, token string) (domain.Result[domain.Claims], error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Fail[domain.Claims](domain.StatusForbidden, domain.ErrMissingToken), nil
	}

	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Result[domain.Claims]{}, fmt.Errorf("verify token: %w", ctxErr)
		}
		return domain.Fail[domain.Claims](domain.StatusForbidden, domain.ErrInvalidToken), nil
	}
	return domain.OK(domain.StatusOK, claims), nil
}
