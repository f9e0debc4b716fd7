package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge-backend/internal/middleware"
	"cardforge-backend/internal/models"
)

type memoryUserStore struct {
	byEmail map[string]*models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{byEmail: make(map[string]*models.User)}
}

func (m *memoryUserStore) Create(_ context.Context, user *models.User) error {
	user.ID = uuid.New()
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func newTestAuthService() (*AuthService, *memoryUserStore) {
	store := newMemoryUserStore()
	return NewAuthService(store, middleware.NewJWTAuth("test-secret")), store
}

func validRegister() models.RegisterRequest {
	return models.RegisterRequest{
		Username: "learner",
		Email:    "learner@example.com",
		Password: "sturdy-pass-1",
	}
}

func TestRegister_Success(t *testing.T) {
	svc, store := newTestAuthService()

	user, tokens, err := svc.Register(context.Background(), validRegister())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEqual(t, "sturdy-pass-1", store.byEmail["learner@example.com"].PasswordHash)
}

func TestRegister_CollectsAllFieldErrors(t *testing.T) {
	svc, _ := newTestAuthService()

	_, _, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "ab",
		Email:    "not-an-email",
		Password: "short",
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 3)
}

func TestRegister_PasswordNeedsNumber(t *testing.T) {
	svc, _ := newTestAuthService()

	req := validRegister()
	req.Password = "longenoughbutnodigit"
	_, _, err := svc.Register(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields["password"], "number")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	_, _, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), validRegister())

	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestAuthService()
	_, _, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	user, tokens, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "learner@example.com",
		Password: "sturdy-pass-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "learner", user.Username)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService()
	_, _, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "learner@example.com",
		Password: "wrong-pass-9",
	})

	var uErr *UnauthorizedError
	require.ErrorAs(t, err, &uErr)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	_, _, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever-1",
	})

	var uErr *UnauthorizedError
	require.ErrorAs(t, err, &uErr)
}
