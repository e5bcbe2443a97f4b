package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"malonda/internal/gateway"
	"malonda/internal/models"
	"malonda/internal/repositories"
	"malonda/internal/services"
	"malonda/internal/session"
)

func TestAuthService_LoginPersistsTokensDurably(t *testing.T) {
	mockAPI := new(MockAPI)
	repo := repositories.NewMockStateRepository()
	sessions := session.NewStore(repo)
	rearmed := false
	auth := services.NewAuthService(mockAPI, sessions, func() { rearmed = true })

	mockAPI.On("Post", "/login/", models.LoginRequest{Email: "a@b.com", Password: "x"}, mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*models.AuthResponse)
			out.Access = "tok1"
			out.Refresh = "tok2"
			out.User = &models.User{ID: 1, Email: "a@b.com", Role: "customer"}
		}).Return(nil).Once()

	user, err := auth.Login(context.Background(), "a@b.com", "x", false)
	assert.NoError(t, err)
	assert.Equal(t, "customer", user.Role)

	assert.True(t, sessions.IsAuthenticated())
	assert.Equal(t, "customer", sessions.CurrentUser().Role)
	assert.True(t, rearmed)

	access, err := repo.Get("access")
	assert.NoError(t, err)
	assert.Equal(t, "tok1", access)
	refresh, err := repo.Get("refresh")
	assert.NoError(t, err)
	assert.Equal(t, "tok2", refresh)
	mockAPI.AssertExpectations(t)
}

func TestAuthService_LoginValidationFailsBeforeDispatch(t *testing.T) {
	mockAPI := new(MockAPI)
	sessions := session.NewStore(repositories.NewMockStateRepository())
	auth := services.NewAuthService(mockAPI, sessions, nil)

	_, err := auth.Login(context.Background(), "not-an-email", "x", false)
	assert.Error(t, err)
	_, err = auth.Login(context.Background(), "a@b.com", "", false)
	assert.Error(t, err)

	mockAPI.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, sessions.IsAuthenticated())
}

func TestAuthService_LoginRejectsIncompleteResponse(t *testing.T) {
	mockAPI := new(MockAPI)
	sessions := session.NewStore(repositories.NewMockStateRepository())
	auth := services.NewAuthService(mockAPI, sessions, nil)

	// Token but no user profile
	mockAPI.On("Post", "/login/", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*models.AuthResponse)
			out.Access = "tok1"
		}).Return(nil).Once()

	_, err := auth.Login(context.Background(), "a@b.com", "x", false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing user data or token")
	assert.False(t, sessions.IsAuthenticated())
	mockAPI.AssertExpectations(t)
}

func TestAuthService_RememberEmail(t *testing.T) {
	mockAPI := new(MockAPI)
	sessions := session.NewStore(repositories.NewMockStateRepository())
	auth := services.NewAuthService(mockAPI, sessions, nil)

	mockAPI.On("Post", "/login/", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*models.AuthResponse)
			out.Access = "tok1"
			out.Refresh = "tok2"
			out.User = &models.User{ID: 1, Email: "a@b.com", Role: "customer"}
		}).Return(nil).Twice()

	_, err := auth.Login(context.Background(), "a@b.com", "x", true)
	assert.NoError(t, err)
	assert.Equal(t, "a@b.com", sessions.RememberedEmail())

	// Logging in without remember forgets the stored email
	_, err = auth.Login(context.Background(), "a@b.com", "x", false)
	assert.NoError(t, err)
	assert.Empty(t, sessions.RememberedEmail())
}

func TestAuthService_RegisterSurfacesFieldErrors(t *testing.T) {
	mockAPI := new(MockAPI)
	sessions := session.NewStore(repositories.NewMockStateRepository())
	auth := services.NewAuthService(mockAPI, sessions, nil)

	mockAPI.On("Post", "/register/", mock.Anything, mock.Anything).
		Return(&gateway.APIError{
			StatusCode: 400,
			Fields: map[string]string{
				"email":    "user with this email already exists.",
				"password": "This password is too common.",
			},
		}).Once()

	_, err := auth.Register(context.Background(), models.RegisterRequest{
		Email: "a@b.com", Password: "password", FirstName: "Ada", LastName: "Lovelace",
	})
	assert.Error(t, err)

	apiErr, ok := gateway.AsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, "user with this email already exists.", apiErr.Fields["email"])
	assert.Contains(t, err.Error(), "email: user with this email already exists.")
	assert.False(t, sessions.IsAuthenticated())
	mockAPI.AssertExpectations(t)
}

func TestAuthService_RegisterAuthenticatesImmediately(t *testing.T) {
	mockAPI := new(MockAPI)
	sessions := session.NewStore(repositories.NewMockStateRepository())
	auth := services.NewAuthService(mockAPI, sessions, nil)

	mockAPI.On("Post", "/register/", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*models.AuthResponse)
			out.Access = "tok1"
			out.Refresh = "tok2"
			out.User = &models.User{ID: 2, Email: "new@b.com", Role: "customer"}
		}).Return(nil).Once()

	user, err := auth.Register(context.Background(), models.RegisterRequest{
		Email: "new@b.com", Password: "secret123", FirstName: "Ada", LastName: "Lovelace",
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, user.ID)
	assert.True(t, sessions.IsAuthenticated())
	mockAPI.AssertExpectations(t)
}

func TestAuthService_LogoutClearsLocallyEvenOnNetworkFailure(t *testing.T) {
	mockAPI := new(MockAPI)
	repo := repositories.NewMockStateRepository()
	sessions := session.NewStore(repo)
	sessions.Login("tok1", "tok2", &models.User{ID: 1, Email: "a@b.com"})
	auth := services.NewAuthService(mockAPI, sessions, nil)

	mockAPI.On("Post", "/logout/", models.LogoutRequest{Refresh: "tok2"}, mock.Anything).
		Return(&gateway.APIError{StatusCode: 500, Message: "blacklist unavailable"}).Once()

	auth.Logout(context.Background())

	assert.False(t, sessions.IsAuthenticated())
	_, err := repo.Get("access")
	assert.ErrorIs(t, err, repositories.ErrKeyNotFound)
	mockAPI.AssertExpectations(t)
}

func TestAuthService_LogoutWithoutRefreshSkipsBackend(t *testing.T) {
	mockAPI := new(MockAPI)
	sessions := session.NewStore(repositories.NewMockStateRepository())
	auth := services.NewAuthService(mockAPI, sessions, nil)

	auth.Logout(context.Background())

	mockAPI.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, sessions.IsAuthenticated())
}
