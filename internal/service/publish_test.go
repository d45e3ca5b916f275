package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/together/internal/model"
)

func TestCreatePost_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	publisher := NewPublisher(db, testTimeout)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	post, err := publisher.CreatePost(ctx, author.ID, PostInput{
		Prompt:    "a cat in space",
		MediaType: model.MediaImage,
		MediaURL:  "https://cdn.example.com/cat.png",
		IsPublic:  true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.Empty(t, post.OriginalPostID)

	got := getPost(t, db, post.ID)
	assert.Equal(t, author.ID, got.AuthorID)
	assert.Equal(t, int64(0), got.LikesCount)
}

func TestCreatePost_Validation(t *testing.T) {
	db := setupTestDB(t)
	publisher := NewPublisher(db, testTimeout)
	ctx := context.Background()

	author := seedUser(t, db, "author")

	_, err := publisher.CreatePost(ctx, author.ID, PostInput{MediaType: model.MediaImage})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = publisher.CreatePost(ctx, author.ID, PostInput{MediaType: "gif", MediaURL: "https://cdn.example.com/x.gif"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = publisher.CreatePost(ctx, "ghost", PostInput{MediaType: model.MediaImage, MediaURL: "https://cdn.example.com/x.png"})
	assert.ErrorIs(t, err, ErrNotFound)
}

// 二创：新帖带 original_post_id，原帖 remix_count +1，产生 remix 事件
func TestRemix_BumpsRemixCount(t *testing.T) {
	db := setupTestDB(t)
	publisher := NewPublisher(db, testTimeout)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	remixer := seedUser(t, db, "remixer")
	original := seedPost(t, db, author.ID)

	remix, err := publisher.Remix(ctx, remixer.ID, original.ID, PostInput{
		Prompt:    "same cat, cyberpunk",
		MediaType: model.MediaImage,
		MediaURL:  "https://cdn.example.com/cat2.png",
		IsPublic:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, original.ID, remix.OriginalPostID)
	assert.Equal(t, int64(1), getPost(t, db, original.ID).RemixCount)

	var events []model.Outbox
	require.NoError(t, db.Where("event_type = ?", model.EventPostRemixed).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, remixer.ID, events[0].ActorID)
	assert.Equal(t, author.ID, events[0].SubjectID)
	assert.Equal(t, original.ID, events[0].PostID)
}

func TestRemix_OriginalNotFound(t *testing.T) {
	db := setupTestDB(t)
	publisher := NewPublisher(db, testTimeout)

	remixer := seedUser(t, db, "remixer")
	_, err := publisher.Remix(context.Background(), remixer.ID, "missing", PostInput{
		MediaType: model.MediaImage, MediaURL: "https://cdn.example.com/x.png",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

// 被封禁的作者不能再发帖
func TestPublish_BannedAuthor(t *testing.T) {
	db := setupTestDB(t)
	publisher := NewPublisher(db, testTimeout)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", author.ID).Update("is_banned", true).Error)

	_, err := publisher.CreatePost(ctx, author.ID, PostInput{
		MediaType: model.MediaImage, MediaURL: "https://cdn.example.com/x.png",
	})
	assert.ErrorIs(t, err, ErrBanned)
}
