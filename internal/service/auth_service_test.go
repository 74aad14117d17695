package service

import (
	"context"
	"testing"
	"time"

	"classguard-be/internal/dto"
	"classguard-be/internal/entity"

	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (IAuthService, *fakeFactory) {
	factory := newFakeFactory()
	svc := NewAuthService(factory, "test-secret", 8*time.Hour)
	return svc, factory
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "bu guru",
		Password: "rahasia1",
		Role:     "teacher",
	})
	require.NoError(t, err)
	assert.Equal(t, "teacher", user.Role)

	res, err := svc.Login(ctx, &dto.LoginRequest{Username: "bu guru", Password: "rahasia1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, user.Id, res.User.Id)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Username: "bu guru", Password: "rahasia1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "bu guru", Password: "lainnya2"})
	assert.Error(t, err)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Username: "bu guru", Password: "rahasia1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "bu guru", Password: "salah"})
	assert.Error(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "tidak ada", Password: "rahasia1"})
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture()

	user := &entity.User{Id: uuid.New(), Username: "bu guru", Role: entity.UserRoleTeacher}
	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.Id, claims.UserId)
	assert.Equal(t, "bu guru", claims.Username)
	assert.Equal(t, entity.UserRoleTeacher, claims.Role)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	other := NewAuthService(newFakeFactory(), "different-secret", time.Hour)
	token, err := other.IssueToken(&entity.User{Id: uuid.New(), Username: "x", Role: entity.UserRoleTeacher})
	require.NoError(t, err)

	svc, _ := newAuthFixture()
	_, err = svc.ParseToken(token)
	assert.Error(t, err)
}
