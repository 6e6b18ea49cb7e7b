package service

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-at-least-32-characters"

func TestUserService(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(repository.NewUserRepository(f.db), TokenConfig{Secret: testSecret, Expiration: time.Hour})
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserRequest{Username: "manager1", Password: "s3cret-pass", Role: model.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, "manager1", created.Username)

	t.Run("Duplicate username", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserRequest{Username: "manager1", Password: "another-pass", Role: model.RoleStaff})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("Unknown role", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserRequest{Username: "root", Password: "another-pass", Role: "admin"})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("Login issues a signed token", func(t *testing.T) {
		tok, err := svc.Login(ctx, LoginUserRequest{Username: "manager1", Password: "s3cret-pass"})
		require.NoError(t, err)

		parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
		require.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		assert.Equal(t, created.ID.String(), claims["sub"])
		assert.Equal(t, model.RoleManager, claims["role"])
		assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, time.Minute)
	})

	t.Run("Bad credentials", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginUserRequest{Username: "manager1", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = svc.Login(ctx, LoginUserRequest{Username: "nobody", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Lookup", func(t *testing.T) {
		u, err := svc.GetUserByID(ctx, created.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.RoleManager, u.Role)
	})
}
