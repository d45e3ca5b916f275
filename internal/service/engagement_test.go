package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/together/internal/model"
	"github.com/d60-Lab/together/internal/repository"
)

func TestToggleLike_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	likeRepo := repository.NewLikeRepository(db)
	svc := NewEngagementService(db, likeRepo, testTimeout)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	liker := seedUser(t, db, "liker")
	post := seedPost(t, db, author.ID)

	liked, err := svc.ToggleLike(ctx, post.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), getPost(t, db, post.ID).LikesCount)

	ok, err := svc.CheckIfLiked(ctx, post.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	liked, err = svc.ToggleLike(ctx, post.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), getPost(t, db, post.ID).LikesCount)

	ok, err = svc.CheckIfLiked(ctx, post.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToggleLike_PostNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEngagementService(db, repository.NewLikeRepository(db), testTimeout)

	_, err := svc.ToggleLike(context.Background(), "missing", "someone")
	assert.ErrorIs(t, err, ErrNotFound)
}

// 不同用户并发点赞不丢更新：计数必须等于边数
func TestToggleLike_ConcurrentNoLostUpdate(t *testing.T) {
	db := setupTestDB(t)
	likeRepo := repository.NewLikeRepository(db)
	svc := NewEngagementService(db, likeRepo, testTimeout)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	post := seedPost(t, db, author.ID)

	const n = 20
	users := make([]*model.User, n)
	for i := 0; i < n; i++ {
		users[i] = seedUser(t, db, "u"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := svc.ToggleLike(ctx, post.ID, uid)
			assert.NoError(t, err)
		}(users[i].ID)
	}
	wg.Wait()

	edges, err := likeRepo.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), edges)
	assert.Equal(t, int64(n), getPost(t, db, post.ID).LikesCount)
}

// 两个不同用户各点一次赞：计数恰好 +2
func TestToggleLike_TwoUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEngagementService(db, repository.NewLikeRepository(db), testTimeout)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")
	post := seedPost(t, db, author.ID)

	var wg sync.WaitGroup
	for _, uid := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.ToggleLike(ctx, post.ID, id)
			assert.NoError(t, err)
		}(uid)
	}
	wg.Wait()

	assert.Equal(t, int64(2), getPost(t, db, post.ID).LikesCount)
}

// 点赞会写 outbox 事件，取消点赞不会
func TestToggleLike_EmitsOutboxEvent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEngagementService(db, repository.NewLikeRepository(db), testTimeout)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	liker := seedUser(t, db, "liker")
	post := seedPost(t, db, author.ID)

	_, err := svc.ToggleLike(ctx, post.ID, liker.ID)
	require.NoError(t, err)

	var events []model.Outbox
	require.NoError(t, db.Where("event_type = ?", model.EventLikeCreated).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, liker.ID, events[0].ActorID)
	assert.Equal(t, author.ID, events[0].SubjectID)
	assert.Equal(t, post.ID, events[0].PostID)

	_, err = svc.ToggleLike(ctx, post.ID, liker.ID)
	require.NoError(t, err)
	var cnt int64
	require.NoError(t, db.Model(&model.Outbox{}).Where("event_type = ?", model.EventLikeCreated).Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt)
}
