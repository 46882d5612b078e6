package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"clinic-auth/internal/domain"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeCredentials struct {
	mu sync.Mutex

	createFn func(password string) (*domain.Credential, error)
	verifyFn func(subjectID, password string) (bool, error)
	deleteFn func(subjectID string) error

	createCalls int
	verifyCalls int
	deleted     []string
}

func (f *fakeCredentials) Create(_ context.Context, password string) (*domain.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createFn != nil {
		return f.createFn(password)
	}
	if password == "" {
		return nil, domain.ErrEmptyPassword
	}
	return &domain.Credential{SubjectID: "1", PasswordHash: "hash:" + password}, nil
}

func (f *fakeCredentials) Verify(_ context.Context, subjectID, password string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyFn != nil {
		return f.verifyFn(subjectID, password)
	}
	return true, nil
}

func (f *fakeCredentials) Delete(_ context.Context, subjectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, subjectID)
	if f.deleteFn != nil {
		return f.deleteFn(subjectID)
	}
	return nil
}

type fakeProfiles struct {
	mu sync.Mutex

	existsFn func(email string) (bool, error)
	createFn func(in domain.NewPatient) (*domain.Patient, error)
	getFn    func(key domain.ProfileKey) (domain.Result[*domain.Patient], error)

	existsCalls int
	createCalls int
	getCalls    int
	created     []domain.NewPatient
}

func (f *fakeProfiles) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	if f.existsFn != nil {
		return f.existsFn(email)
	}
	return false, nil
}

func (f *fakeProfiles) Create(_ context.Context, in domain.NewPatient) (*domain.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.created = append(f.created, in)
	if f.createFn != nil {
		return f.createFn(in)
	}
	return &domain.Patient{
		ID:        "p-" + in.SubjectID,
		SubjectID: in.SubjectID,
		Name:      in.Name,
		Email:     in.Email,
	}, nil
}

func (f *fakeProfiles) GetByKey(_ context.Context, key domain.ProfileKey) (domain.Result[*domain.Patient], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getFn != nil {
		return f.getFn(key)
	}
	return domain.OK(domain.StatusOK, &domain.Patient{SubjectID: "1"}), nil
}

type fakeTokens struct {
	mu sync.Mutex

	issueFn  func(subjectID string) (string, error)
	verifyFn func(token string) (domain.Claims, error)

	issueCalls  int
	verifyCalls int
}

func (f *fakeTokens) Issue(_ context.Context, subjectID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issueCalls++
	if f.issueFn != nil {
		return f.issueFn(subjectID)
	}
	return "token", nil
}

func (f *fakeTokens) Verify(_ context.Context, token string) (domain.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyFn != nil {
		return f.verifyFn(token)
	}
	if token != "validtoken" {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	return domain.Claims{SubjectID: "1"}, nil
}

var errStoreDown = errors.New("store is down")

func newAuthForTest() (AuthService, *fakeCredentials, *fakeProfiles, *fakeTokens) {
	creds := &fakeCredentials{}
	profiles := &fakeProfiles{}
	tokens := &fakeTokens{}
	return NewAuthService(creds, profiles, tokens, quietLogger()), creds, profiles, tokens
}
