package usecase

import (
	"context"
	"testing"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/dto/request"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest(name string) *request.RegisterRequest {
	return &request.RegisterRequest{
		Username:        name,
		Email:           name + "@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestBootstrapAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.config.Admin = utils.AdminConfig{Email: "root@example.com", Password: "changeme"}

	created, err := env.service.Auth.BootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := env.store.repository().User.FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, "admin", admin.Username)
	assert.Equal(t, []entity.UserRole{entity.RoleAdmin}, admin.Roles)

	// The store is no longer empty
	created, err = env.service.Auth.BootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	count, err := env.store.repository().User.CountAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestBootstrapAdmin_SkipsWhenUsersExist(t *testing.T) {
	env := newTestEnv(t)
	env.config.Admin = utils.AdminConfig{Email: "root@example.com", Password: "changeme"}
	env.seedUser(t, "first", entity.RoleUser)

	created, err := env.service.Auth.BootstrapAdmin(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
}

func TestBootstrapAdmin_SkipsWithoutConfig(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.service.Auth.BootstrapAdmin(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
}

func TestRegister_AssignsUserRoleAndLogsIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.service.Auth.Register(ctx, registerRequest("traveler"))
	require.NoError(t, err)
	assert.Equal(t, []entity.UserRole{entity.RoleUser}, resp.Roles)

	claims, err := utils.ParseAccessToken(env.config.JWT.Secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.Subject)
	assert.Equal(t, []string{"User"}, claims.Roles)

	session, err := env.store.repository().Session.FindValidSession(ctx, uuid.MustParse(claims.ID))
	require.NoError(t, err)
	assert.NotNil(t, session)
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.Auth.Register(ctx, registerRequest("traveler"))
	require.NoError(t, err)

	_, err = env.service.Auth.Register(ctx, registerRequest("traveler"))
	assert.ErrorIs(t, err, utils.ErrConflict)

	req := registerRequest("someone")
	req.Email = "TRAVELER@example.com"
	_, err = env.service.Auth.Register(ctx, req)
	assert.ErrorIs(t, err, utils.ErrConflict)
}

func TestRegisterFlightOwner(t *testing.T) {
	env := newTestEnv(t)

	owner, err := env.service.Auth.RegisterFlightOwner(context.Background(), registerRequest("garuda"))
	require.NoError(t, err)
	assert.Equal(t, []entity.UserRole{entity.RoleFlightOwner}, owner.Roles)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.Auth.Register(ctx, registerRequest("traveler"))
	require.NoError(t, err)

	byEmail, err := env.service.Auth.Login(ctx, &request.LoginRequest{Username: "traveler@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "traveler", byEmail.Username)

	byName, err := env.service.Auth.Login(ctx, &request.LoginRequest{Username: "traveler", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEqual(t, byEmail.Token, byName.Token)

	_, err = env.service.Auth.Login(ctx, &request.LoginRequest{Username: "traveler", Password: "wrong-pass"})
	assert.ErrorIs(t, err, utils.ErrUnauthenticated)

	_, err = env.service.Auth.Login(ctx, &request.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, utils.ErrUnauthenticated)
}

func TestLogout_RevokesSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.service.Auth.Register(ctx, registerRequest("traveler"))
	require.NoError(t, err)
	claims, err := utils.ParseAccessToken(env.config.JWT.Secret, resp.Token)
	require.NoError(t, err)

	require.NoError(t, env.service.Auth.Logout(ctx, claims.ID))

	session, err := env.store.repository().Session.FindValidSession(ctx, uuid.MustParse(claims.ID))
	require.NoError(t, err)
	assert.Nil(t, session)

	assert.ErrorIs(t, env.service.Auth.Logout(ctx, claims.ID), utils.ErrNotFound)
	assert.ErrorIs(t, env.service.Auth.Logout(ctx, "garbage"), utils.ErrUnauthenticated)
}
