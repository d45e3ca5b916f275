package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/together/internal/repository"
)

func TestAddDeleteComment_CounterRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCommentService(db, repository.NewCommentRepository(db), testTimeout)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	commenter := seedUser(t, db, "commenter")
	post := seedPost(t, db, author.ID)

	c1, err := svc.AddComment(ctx, post.ID, commenter.ID, "nice cat")
	require.NoError(t, err)
	c2, err := svc.AddComment(ctx, post.ID, commenter.ID, "really nice cat")
	require.NoError(t, err)
	assert.Equal(t, int64(2), getPost(t, db, post.ID).CommentsCount)

	list, err := svc.ListComments(ctx, post.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// 创建时间升序
	assert.Equal(t, c1.ID, list[0].ID)
	assert.Equal(t, c2.ID, list[1].ID)

	require.NoError(t, svc.DeleteComment(ctx, post.ID, c1.ID, commenter.ID))
	assert.Equal(t, int64(1), getPost(t, db, post.ID).CommentsCount)
}

func TestDeleteComment_OnlyAuthor(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCommentService(db, repository.NewCommentRepository(db), testTimeout)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	commenter := seedUser(t, db, "commenter")
	intruder := seedUser(t, db, "intruder")
	post := seedPost(t, db, author.ID)

	c, err := svc.AddComment(ctx, post.ID, commenter.ID, "hello")
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, post.ID, c.ID, intruder.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, int64(1), getPost(t, db, post.ID).CommentsCount)
}

func TestAddComment_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCommentService(db, repository.NewCommentRepository(db), testTimeout)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	post := seedPost(t, db, author.ID)

	_, err := svc.AddComment(ctx, post.ID, author.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddComment(ctx, "missing", author.ID, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}
