package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(users *mockUserRepo, store *mockTokenStore) services.AuthService {
	return services.NewAuthService(users, services.NewTokenService(testSecret), store, zap.NewNop())
}

func TestAuthService_Signup(t *testing.T) {
	users := newMockUserRepo()
	store := newMockTokenStore()
	svc := newAuthService(users, store)

	user, pair, svcErr := svc.Signup(context.Background(), &models.SignupRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "password123",
	})
	require.Nil(t, svcErr)
	require.NotNil(t, user)
	require.NotNil(t, pair)

	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "password123", user.Password, "password must be stored hashed")

	stored, _ := store.Get(context.Background(), user.ID.Hex())
	assert.Equal(t, pair.RefreshToken, stored)
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	users := newMockUserRepo()
	svc := newAuthService(users, newMockTokenStore())

	_, _, svcErr := svc.Signup(context.Background(), &models.SignupRequest{
		Name: "Ada", Email: "ada@example.com", Password: "first",
	})
	require.Nil(t, svcErr)

	// Second signup fails regardless of the password used.
	_, _, svcErr = svc.Signup(context.Background(), &models.SignupRequest{
		Name: "Imposter", Email: "ada@example.com", Password: "different",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Equal(t, "User already exists", svcErr.Message)
}

func TestAuthService_Login(t *testing.T) {
	users := newMockUserRepo()
	store := newMockTokenStore()
	svc := newAuthService(users, store)

	_, signupPair, svcErr := svc.Signup(context.Background(), &models.SignupRequest{
		Name: "Ada", Email: "ada@example.com", Password: "password123",
	})
	require.Nil(t, svcErr)

	user, pair, svcErr := svc.Login(context.Background(), &models.LoginRequest{
		Email: "ada@example.com", Password: "password123",
	})
	require.Nil(t, svcErr)
	require.NotNil(t, pair)
	assert.Equal(t, "ada@example.com", user.Email)

	// The login session overwrites the signup session's refresh token.
	stored, _ := store.Get(context.Background(), user.ID.Hex())
	assert.Equal(t, pair.RefreshToken, stored)
	assert.NotEqual(t, signupPair.RefreshToken, stored)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	users := newMockUserRepo()
	svc := newAuthService(users, newMockTokenStore())

	_, _, svcErr := svc.Signup(context.Background(), &models.SignupRequest{
		Name: "Ada", Email: "ada@example.com", Password: "password123",
	})
	require.Nil(t, svcErr)

	_, pair, svcErr := svc.Login(context.Background(), &models.LoginRequest{
		Email: "ada@example.com", Password: "wrong",
	})
	require.NotNil(t, svcErr)
	assert.Nil(t, pair, "no tokens may be minted on a failed credential check")
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
	assert.Equal(t, "Invalid email or password", svcErr.Message)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := newAuthService(newMockUserRepo(), newMockTokenStore())

	_, _, svcErr := svc.Login(context.Background(), &models.LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
	assert.Equal(t, "Invalid email or password", svcErr.Message)
}

func TestAuthService_Refresh(t *testing.T) {
	users := newMockUserRepo()
	store := newMockTokenStore()
	svc := newAuthService(users, store)

	user, pair, svcErr := svc.Signup(context.Background(), &models.SignupRequest{
		Name: "Ada", Email: "ada@example.com", Password: "password123",
	})
	require.Nil(t, svcErr)

	accessToken, svcErr := svc.Refresh(context.Background(), pair.RefreshToken)
	require.Nil(t, svcErr)
	assert.NotEmpty(t, accessToken)

	// The refresh token itself is left untouched.
	stored, _ := store.Get(context.Background(), user.ID.Hex())
	assert.Equal(t, pair.RefreshToken, stored)
}

func TestAuthService_Refresh_NoToken(t *testing.T) {
	svc := newAuthService(newMockUserRepo(), newMockTokenStore())

	_, svcErr := svc.Refresh(context.Background(), "")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
}

func TestAuthService_Refresh_Mismatch(t *testing.T) {
	users := newMockUserRepo()
	store := newMockTokenStore()
	svc := newAuthService(users, store)

	_, pair, svcErr := svc.Signup(context.Background(), &models.SignupRequest{
		Name: "Ada", Email: "ada@example.com", Password: "password123",
	})
	require.Nil(t, svcErr)

	// A second session replaces the stored token; the old one is rejected.
	_, _, svcErr = svc.Login(context.Background(), &models.LoginRequest{
		Email: "ada@example.com", Password: "password123",
	})
	require.Nil(t, svcErr)

	_, svcErr = svc.Refresh(context.Background(), pair.RefreshToken)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.StatusCode)
}

func TestAuthService_Refresh_AfterLogout(t *testing.T) {
	users := newMockUserRepo()
	store := newMockTokenStore()
	svc := newAuthService(users, store)

	_, pair, svcErr := svc.Signup(context.Background(), &models.SignupRequest{
		Name: "Ada", Email: "ada@example.com", Password: "password123",
	})
	require.Nil(t, svcErr)

	require.Nil(t, svc.Logout(context.Background(), pair.RefreshToken))

	_, svcErr = svc.Refresh(context.Background(), pair.RefreshToken)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
	assert.Equal(t, "Session expired", svcErr.Message)
}

func TestAuthService_Logout_GarbageTokenIsNoop(t *testing.T) {
	svc := newAuthService(newMockUserRepo(), newMockTokenStore())

	assert.Nil(t, svc.Logout(context.Background(), ""))
	assert.Nil(t, svc.Logout(context.Background(), "not-a-jwt"))
}
