package auth

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/internal/models"
	"CourseLoom/pkg/logger"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeAuthRepo) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == user.Username {
			return nil, app_errors.ErrUserExists
		}
	}
	user.ID = uuid.New()
	f.users[user.ID] = &user
	return &user, nil
}

func (f *fakeAuthRepo) UserByName(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, app_errors.ErrUserNotFound
}

func (f *fakeAuthRepo) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	return u, nil
}

type fakeTokenRepo struct {
	tokens map[uuid.UUID]string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[uuid.UUID]string)}
}

func (f *fakeTokenRepo) Create(_ context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	f.tokens[userID] = token.Raw
	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	return &models.RefreshToken{UserID: userID, HashedToken: token.Raw, ExpiresAt: expiresAt.Time}, nil
}

func (f *fakeTokenRepo) ByPrimaryKey(_ context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	stored, ok := f.tokens[userID]
	if !ok || stored != token.Raw {
		return nil, app_errors.ErrTokenNotFound
	}
	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	return &models.RefreshToken{UserID: userID, HashedToken: stored, ExpiresAt: expiresAt.Time}, nil
}

func (f *fakeTokenRepo) DeleteUserTokens(_ context.Context, userID uuid.UUID) error {
	delete(f.tokens, userID)
	return nil
}

func newTestAuth() (*AuthService, *fakeAuthRepo, *fakeTokenRepo) {
	authRepo := newFakeAuthRepo()
	tokens := newFakeTokenRepo()
	manager := NewJWTManager("test-secret", "test", 15*time.Minute, time.Hour)
	return NewAuthService(logger.Discard(), manager, authRepo, tokens), authRepo, tokens
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	svc, repo, _ := newTestAuth()

	created, err := svc.Register(context.Background(), models.User{
		Username: "alice",
		Password: "secret1",
		Email:    "alice@example.com",
		Role:     "superuser",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleStudent, created.Role)
	stored := repo.users[created.ID]
	assert.NotEqual(t, "secret1", stored.Password)
	assert.True(t, checkPasswordHash("secret1", stored.Password))
}

func TestRegisterPasswordBounds(t *testing.T) {
	svc, _, _ := newTestAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, models.User{Username: "a", Password: "short", Email: "a@b.c"})
	assert.ErrorIs(t, err, app_errors.ErrIncorrectPassword)

	_, err = svc.Register(ctx, models.User{Username: "a", Password: "seventeen-chars!!", Email: "a@b.c"})
	assert.ErrorIs(t, err, app_errors.ErrIncorrectPassword)
}

func TestLoginIssuesUsableTokenPair(t *testing.T) {
	svc, _, _ := newTestAuth()
	ctx := context.Background()

	created, err := svc.Register(ctx, models.User{
		Username: "bob",
		Password: "secret1",
		Email:    "bob@example.com",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)

	accessToken, refreshToken, err := svc.LoginUser(ctx, "bob", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)

	userID, role, err := svc.AccessClaims(ctx, accessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, userID)
	assert.Equal(t, models.RoleAdmin, role)

	parsed, err := svc.ParseToken(ctx, accessToken)
	require.NoError(t, err)
	assert.True(t, svc.IsAccessToken(ctx, parsed))

	parsedRefresh, err := svc.ParseToken(ctx, refreshToken)
	require.NoError(t, err)
	assert.False(t, svc.IsAccessToken(ctx, parsedRefresh))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, models.User{Username: "bob", Password: "secret1", Email: "b@e.c"})
	require.NoError(t, err)

	_, _, err = svc.LoginUser(ctx, "bob", "wrong-1")
	assert.ErrorIs(t, err, app_errors.ErrIncorrectPassword)

	_, _, err = svc.LoginUser(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, app_errors.ErrUserNotFound)
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _, tokens := newTestAuth()
	ctx := context.Background()

	created, err := svc.Register(ctx, models.User{Username: "bob", Password: "secret1", Email: "b@e.c"})
	require.NoError(t, err)

	_, refreshToken, err := svc.LoginUser(ctx, "bob", "secret1")
	require.NoError(t, err)

	pair, err := svc.RefreshTokens(ctx, refreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken.Raw)

	// the old refresh token is gone after rotation
	_, err = svc.RefreshTokens(ctx, refreshToken)
	assert.ErrorIs(t, err, app_errors.ErrTokenNotFound)

	assert.Equal(t, pair.RefreshToken.Raw, tokens.tokens[created.ID])
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, models.User{Username: "bob", Password: "secret1", Email: "b@e.c"})
	require.NoError(t, err)

	accessToken, _, err := svc.LoginUser(ctx, "bob", "secret1")
	require.NoError(t, err)

	_, err = svc.RefreshTokens(ctx, accessToken)
	assert.ErrorIs(t, err, app_errors.ErrTokenNotFound)
}
