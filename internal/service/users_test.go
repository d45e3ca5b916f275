package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/together/internal/repository"
)

func TestCreateUser_CaseFoldsUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db), testTimeout)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "uid-1", "  Cat_Lover42 ", "")
	require.NoError(t, err)
	assert.Equal(t, "cat_lover42", u.Username)
	// 未给昵称时回落到用户名
	assert.Equal(t, "cat_lover42", u.DisplayName)

	got, err := svc.GetUserByUsername(ctx, "cat_lover42")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", got.ID)
}

func TestCreateUser_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db), testTimeout)
	ctx := context.Background()

	cases := []struct {
		name     string
		uid      string
		username string
	}{
		{"empty uid", "", "valid_name"},
		{"too short", "u1", "ab"},
		{"too long", "u1", "abcdefghijklmnopqrstu"},
		{"illegal chars", "u1", "with-dash"},
		{"spaces inside", "u1", "two words"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tc.uid, tc.username, "")
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db), testTimeout)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "u1", "taken", "")
	require.NoError(t, err)

	// 大小写不同仍撞同一个用户名
	_, err = svc.CreateUser(ctx, "u2", "Taken", "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db), testTimeout)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "u1", "someone", "Someone")
	require.NoError(t, err)

	bio := "cat pictures only"
	require.NoError(t, svc.UpdateProfile(ctx, u.ID, nil, nil, &bio))

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Someone", got.DisplayName)
	assert.Equal(t, bio, got.Bio)

	empty := ""
	assert.ErrorIs(t, svc.UpdateProfile(ctx, u.ID, &empty, nil, nil), ErrValidation)
}

func TestGetUsers_Batch(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db), testTimeout)
	ctx := context.Background()

	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")

	users, err := svc.GetUsers(ctx, []string{a.ID, b.ID, "ghost"})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = svc.GetUsers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestGetUser_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db), testTimeout)

	_, err := svc.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
