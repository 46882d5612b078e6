package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"clinic-auth/internal/domain"
)

func TestCreateNewUser_Created(t *testing.T) {
	t.Parallel()

	svc, creds, _, _ := newAuthForTest()

	res, err := svc.CreateNewUser(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCreated, res.Status)
	require.False(t, res.Failed())
	require.Equal(t, "1", res.Value.SubjectID)
	require.Equal(t, "hash:abc", res.Value.PasswordHash)
	require.Equal(t, 1, creds.createCalls)
}

func TestCreateNewUser_EmptyPassword_BadRequest(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newAuthForTest()

	res, err := svc.CreateNewUser(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, domain.StatusBadRequest, res.Status)
	require.ErrorIs(t, res.Err, domain.ErrEmptyPassword)
}

func TestCreateNewUser_PasswordTooLong_BadRequest(t *testing.T) {
	t.Parallel()

	svc, creds, _, _ := newAuthForTest()
	creds.createFn = func(string) (*domain.Credential, error) { return nil, domain.ErrPasswordTooLong }

	res, err := svc.CreateNewUser(context.Background(), "long")
	require.NoError(t, err)
	require.Equal(t, domain.StatusBadRequest, res.Status)
	require.ErrorIs(t, res.Err, domain.ErrPasswordTooLong)
}

func TestCreateNewUser_StoreFailure_IsInfrastructureError(t *testing.T) {
	t.Parallel()

	svc, creds, _, _ := newAuthForTest()
	creds.createFn = func(string) (*domain.Credential, error) { return nil, errStoreDown }

	_, err := svc.CreateNewUser(context.Background(), "abc")
	require.ErrorIs(t, err, errStoreDown)
}

func TestSignUpNewProfile_Created(t *testing.T) {
	t.Parallel()

	svc, creds, profiles, _ := newAuthForTest()

	res, err := svc.SignUpNewProfile(context.Background(), SignUpInput{Name: "dima", Email: "email", Password: "123"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCreated, res.Status)
	require.Equal(t, "dima", res.Value.Name)
	require.Equal(t, "email", res.Value.Email)
	require.Equal(t, "1", res.Value.SubjectID)

	require.Equal(t, 1, profiles.existsCalls)
	require.Equal(t, 1, creds.createCalls)
	require.Equal(t, 1, profiles.createCalls)
	require.Equal(t, "1", profiles.created[0].SubjectID)
	require.Empty(t, creds.deleted)
}

func TestSignUpNewProfile_EmailExists_ShortCircuits(t *testing.T) {
	t.Parallel()

	svc, creds, profiles, _ := newAuthForTest()
	profiles.existsFn = func(string) (bool, error) { return true, nil }

	res, err := svc.SignUpNewProfile(context.Background(), SignUpInput{Name: "dima", Email: "email", Password: "123"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusBadRequest, res.Status)
	require.ErrorIs(t, res.Err, domain.ErrEmailExists)
	require.Equal(t, "email already exists", res.Err.Error())

	require.Equal(t, 1, profiles.existsCalls)
	require.Zero(t, creds.createCalls)
	require.Zero(t, profiles.createCalls)
}

func TestSignUpNewProfile_ExistsCheckFailure(t *testing.T) {
	t.Parallel()

	svc, creds, profiles, _ := newAuthForTest()
	profiles.existsFn = func(string) (bool, error) { return false, errStoreDown }

	_, err := svc.SignUpNewProfile(context.Background(), SignUpInput{Email: "email", Password: "123"})
	require.ErrorIs(t, err, errStoreDown)
	require.Zero(t, creds.createCalls)
}

func TestSignUpNewProfile_EmptyPassword_NoProfile(t *testing.T) {
	t.Parallel()

	svc, _, profiles, _ := newAuthForTest()

	res, err := svc.SignUpNewProfile(context.Background(), SignUpInput{Email: "email"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusBadRequest, res.Status)
	require.ErrorIs(t, res.Err, domain.ErrEmptyPassword)
	require.Zero(t, profiles.createCalls)
}

func TestSignUpNewProfile_ProfileFailure_DiscardsCredential(t *testing.T) {
	t.Parallel()

	svc, creds, profiles, _ := newAuthForTest()
	profiles.createFn = func(domain.NewPatient) (*domain.Patient, error) { return nil, errStoreDown }

	_, err := svc.SignUpNewProfile(context.Background(), SignUpInput{Email: "email", Password: "123"})
	require.ErrorIs(t, err, errStoreDown)
	require.Equal(t, []string{"1"}, creds.deleted)
}

func TestSignUpNewProfile_LostUniquenessRace_BadRequest(t *testing.T) {
	t.Parallel()

	svc, creds, profiles, _ := newAuthForTest()
	profiles.createFn = func(domain.NewPatient) (*domain.Patient, error) {
		return nil, errors.Join(domain.ErrEmailTaken, errors.New("UNIQUE constraint failed: patients.email"))
	}

	res, err := svc.SignUpNewProfile(context.Background(), SignUpInput{Email: "email", Password: "123"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusBadRequest, res.Status)
	require.ErrorIs(t, res.Err, domain.ErrEmailExists)
	require.Equal(t, []string{"1"}, creds.deleted)
}

func TestSignUpNewProfile_CompensationFailure_JoinsErrors(t *testing.T) {
	t.Parallel()

	svc, creds, profiles, _ := newAuthForTest()
	profileErr := errors.New("profile insert failed")
	deleteErr := errors.New("credential delete failed")
	profiles.createFn = func(domain.NewPatient) (*domain.Patient, error) { return nil, profileErr }
	creds.deleteFn = func(string) error { return deleteErr }

	_, err := svc.SignUpNewProfile(context.Background(), SignUpInput{Email: "email", Password: "123"})
	require.ErrorIs(t, err, profileErr)
	require.ErrorIs(t, err, deleteErr)
}

func TestSignUpNewProfile_CompensationRunsAfterCancel(t *testing.T) {
	t.Parallel()

	svc, creds, profiles, _ := newAuthForTest()
	ctx, cancel := context.WithCancel(context.Background())
	profiles.createFn = func(domain.NewPatient) (*domain.Patient, error) {
		cancel()
		return nil, context.Canceled
	}

	_, err := svc.SignUpNewProfile(ctx, SignUpInput{Email: "email", Password: "123"})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"1"}, creds.deleted)
}

func TestSignInUser_Success(t *testing.T) {
	t.Parallel()

	svc, creds, profiles, tokens := newAuthForTest()
	var issuedFor string
	tokens.issueFn = func(subjectID string) (string, error) {
		issuedFor = subjectID
		return "token", nil
	}

	res, err := svc.SignInUser(context.Background(), SignInInput{SubjectID: "1", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOK, res.Status)
	require.Equal(t, "token", res.Value)
	require.Equal(t, "1", issuedFor)

	require.Equal(t, 1, profiles.getCalls)
	require.Equal(t, 1, creds.verifyCalls)
	require.Equal(t, 1, tokens.issueCalls)
}

func TestSignInUser_WrongPassword(t *testing.T) {
	t.Parallel()

	svc, creds, profiles, tokens := newAuthForTest()
	creds.verifyFn = func(string, string) (bool, error) { return false, nil }

	res, err := svc.SignInUser(context.Background(), SignInInput{SubjectID: "1", Password: "nope"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusForbidden, res.Status)
	require.ErrorIs(t, res.Err, domain.ErrWrongPassword)
	require.Equal(t, "wrong password", res.Err.Error())

	require.Equal(t, 1, profiles.getCalls)
	require.Equal(t, 1, creds.verifyCalls)
	require.Zero(t, tokens.issueCalls)
}

func TestSignInUser_ProfileNotFound_WrongEmail(t *testing.T) {
	t.Parallel()

	svc, creds, profiles, tokens := newAuthForTest()
	profiles.getFn = func(domain.ProfileKey) (domain.Result[*domain.Patient], error) {
		return domain.Fail[*domain.Patient](domain.StatusNotFound, errors.New("not-found")), nil
	}

	res, err := svc.SignInUser(context.Background(), SignInInput{Email: "missing@x.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusForbidden, res.Status)
	require.ErrorIs(t, res.Err, domain.ErrWrongEmail)
	require.Equal(t, "wrong email", res.Err.Error())

	require.Equal(t, 1, profiles.getCalls)
	require.Zero(t, creds.verifyCalls)
	require.Zero(t, tokens.issueCalls)
}

func TestSignInUser_InfrastructureFailures(t *testing.T) {
	t.Parallel()

	t.Run("lookup", func(t *testing.T) {
		svc, creds, profiles, _ := newAuthForTest()
		profiles.getFn = func(domain.ProfileKey) (domain.Result[*domain.Patient], error) {
			return domain.Result[*domain.Patient]{}, errStoreDown
		}

		_, err := svc.SignInUser(context.Background(), SignInInput{Email: "e@x.com", Password: "pw"})
		require.ErrorIs(t, err, errStoreDown)
		require.Zero(t, creds.verifyCalls)
	})

	t.Run("verify", func(t *testing.T) {
		svc, creds, _, tokens := newAuthForTest()
		creds.verifyFn = func(string, string) (bool, error) { return false, errStoreDown }

		_, err := svc.SignInUser(context.Background(), SignInInput{Email: "e@x.com", Password: "pw"})
		require.ErrorIs(t, err, errStoreDown)
		require.Zero(t, tokens.issueCalls)
	})

	t.Run("issue", func(t *testing.T) {
		svc, _, _, tokens := newAuthForTest()
		tokens.issueFn = func(string) (string, error) { return "", errStoreDown }

		_, err := svc.SignInUser(context.Background(), SignInInput{Email: "e@x.com", Password: "pw"})
		require.ErrorIs(t, err, errStoreDown)
	})
}

func TestCheckToken_Valid(t *testing.T) {
	t.Parallel()

	svc, _, _, tokens := newAuthForTest()

	res, err := svc.CheckToken(context.Background(), "validtoken")
	require.NoError(t, err)
	require.Equal(t, domain.StatusOK, res.Status)
	require.Equal(t, "1", res.Value.SubjectID)
	require.Equal(t, 1, tokens.verifyCalls)
}

func TestCheckToken_Missing_DoesNotVerify(t *testing.T) {
	t.Parallel()

	svc, _, _, tokens := newAuthForTest()

	for _, token := range []string{"", "   "} {
		res, err := svc.CheckToken(context.Background(), token)
		require.NoError(t, err)
		require.Equal(t, domain.StatusForbidden, res.Status)
		require.Error(t, res.Err)
		require.ErrorIs(t, res.Err, domain.ErrMissingToken)
	}
	require.Zero(t, tokens.verifyCalls)
}

func TestCheckToken_Invalid_Forbidden(t *testing.T) {
	t.Parallel()

	svc, _, _, tokens := newAuthForTest()
	tokens.verifyFn = func(string) (domain.Claims, error) { return domain.Claims{}, errors.New("signature is invalid") }

	res, err := svc.CheckToken(context.Background(), "forged")
	require.NoError(t, err)
	require.Equal(t, domain.StatusForbidden, res.Status)
	require.ErrorIs(t, res.Err, domain.ErrInvalidToken)
}

func TestCheckToken_CancelledContext_IsInfrastructureError(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newAuthForTest()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CheckToken(ctx, "forged")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCheckToken_IsRepeatable(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newAuthForTest()

	first, err := svc.CheckToken(context.Background(), "validtoken")
	require.NoError(t, err)
	second, err := svc.CheckToken(context.Background(), "validtoken")
	require.NoError(t, err)
	require.Equal(t, first.Value.SubjectID, second.Value.SubjectID)
	require.Equal(t, first.Status, second.Status)
}
