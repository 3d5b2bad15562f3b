package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfpflow/internal/apperr"
	"rfpflow/internal/util"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret")

	u, err := svc.Register(context.Background(), "buyer@corp.test", "hunter22")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "hunter22", u.PasswordHash)

	token, err := svc.Login(context.Background(), "buyer@corp.test", "hunter22")
	require.NoError(t, err)

	userID, err := util.ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret")

	_, err := svc.Register(context.Background(), "buyer@corp.test", "hunter22")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "buyer@corp.test", "other")
	assert.True(t, apperr.IsDuplicate(err))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret")
	_, err := svc.Register(context.Background(), "", "pw")
	assert.True(t, apperr.IsValidation(err))
	_, err = svc.Register(context.Background(), "a@b.test", "")
	assert.True(t, apperr.IsValidation(err))
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret")
	_, err := svc.Register(context.Background(), "buyer@corp.test", "hunter22")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "buyer@corp.test", "wrong")
	assert.Error(t, err)

	_, err = svc.Login(context.Background(), "nobody@corp.test", "hunter22")
	assert.Error(t, err)
}
