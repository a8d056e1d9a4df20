package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/pkg/auth"
	"github.com/atelierno/storefront-backend/pkg/config"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/logger"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:users_tests?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL DEFAULT '',
  city TEXT,
  phone TEXT,
  address TEXT,
  postcode TEXT,
  extra_info TEXT,
  birthday DATETIME,
  is_admin INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)

	t.Cleanup(func() {
		conn.Exec("DELETE FROM users")
	})
	return conn
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "users-test-secret",
		Issuer:            "storefront-test",
		ExpirationMinutes: 15,
	}
}

// Small argon parameters keep the hashing rounds fast under test.
func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newUsersService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		JWT:      testJWTConfig(),
		Password: testPasswordConfig(),
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	return svc
}

func TestRegisterIssuesToken(t *testing.T) {
	conn := setupUsersTestDB(t)
	svc := newUsersService(t, conn)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:     "  Anna@Example.COM ",
		Password:  "correct horse",
		FirstName: "Anna",
		LastName:  "Ferrero",
	})
	require.NoError(t, err)

	assert.Equal(t, "anna@example.com", result.User.Email)
	assert.Equal(t, "Anna", result.User.FirstName)
	require.NotEmpty(t, result.Token)

	claims, err := auth.ParseAccessToken(testJWTConfig(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "anna@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	conn := setupUsersTestDB(t)
	svc := newUsersService(t, conn)
	ctx := context.Background()

	input := RegisterInput{Email: "dup@example.com", Password: "password1", FirstName: "First"}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = svc.Register(ctx, input)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestRegisterValidation(t *testing.T) {
	conn := setupUsersTestDB(t)
	svc := newUsersService(t, conn)
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing email", RegisterInput{Password: "password1", FirstName: "A"}},
		{"malformed email", RegisterInput{Email: "not-an-email", Password: "password1", FirstName: "A"}},
		{"short password", RegisterInput{Email: "a@example.com", Password: "short", FirstName: "A"}},
		{"missing first name", RegisterInput{Email: "a@example.com", Password: "password1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input)
			require.Error(t, err)

			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	conn := setupUsersTestDB(t)
	svc := newUsersService(t, conn)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Email:     "login@example.com",
		Password:  "password1",
		FirstName: "Login",
	})
	require.NoError(t, err)

	result, err := svc.Login(ctx, "login@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)
	assert.NotEmpty(t, result.Token)

	repo := NewRepository(conn)
	stored, err := repo.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	_, err = svc.Login(ctx, "login@example.com", "wrong password")
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestLoginUnknownEmail(t *testing.T) {
	conn := setupUsersTestDB(t)
	svc := newUsersService(t, conn)

	_, err := svc.Login(context.Background(), "ghost@example.com", "password1")
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	conn := setupUsersTestDB(t)
	svc := newUsersService(t, conn)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Email:     "inactive@example.com",
		Password:  "password1",
		FirstName: "Inactive",
	})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(
		"UPDATE users SET is_active = 0 WHERE id = ?", registered.User.ID,
	).Error)

	_, err = svc.Login(ctx, "inactive@example.com", "password1")
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeForbidden, appErr.Code())
}

func TestUpdateProfile(t *testing.T) {
	conn := setupUsersTestDB(t)
	svc := newUsersService(t, conn)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Email:     "profile@example.com",
		Password:  "password1",
		FirstName: "Old",
		LastName:  "Name",
	})
	require.NoError(t, err)

	city := "Turin"
	phone := "+39 011 555 0101"
	birthday := time.Date(1992, time.March, 14, 0, 0, 0, 0, time.UTC)

	updated, err := svc.UpdateProfile(ctx, registered.User.ID, ProfileInput{
		FirstName: "New",
		LastName:  "Name",
		City:      &city,
		Phone:     &phone,
		Birthday:  &birthday,
	})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.FirstName)
	require.NotNil(t, updated.City)
	assert.Equal(t, "Turin", *updated.City)
	require.NotNil(t, updated.Birthday)
	assert.True(t, birthday.Equal(*updated.Birthday))

	fetched, err := svc.Get(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", fetched.FirstName)
	require.NotNil(t, fetched.Phone)
	assert.Equal(t, phone, *fetched.Phone)
}
