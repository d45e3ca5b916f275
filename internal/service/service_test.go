package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: 每个连接是独立库，收敛到单连接
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Post{}, &model.Like{}, &model.Follow{}, &model.Fan{},
		&model.Comment{}, &model.Notification{}, &model.NotificationCounter{},
		&model.Report{}, &model.Outbox{},
	))
	return db
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func seedUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()
	u := &model.User{ID: id, Username: id, DisplayName: id}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPost(t *testing.T, db *gorm.DB, authorID string) *model.Post {
	t.Helper()
	p := &model.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Prompt:    "a cat in space",
		MediaType: model.MediaImage,
		MediaURL:  "https://cdn.example.com/cat.png",
		IsPublic:  true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func getPost(t *testing.T, db *gorm.DB, id string) *model.Post {
	t.Helper()
	var p model.Post
	require.NoError(t, db.Where("id = ?", id).First(&p).Error)
	return &p
}

func getUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()
	var u model.User
	require.NoError(t, db.Where("id = ?", id).First(&u).Error)
	return &u
}

const testTimeout = 5 * time.Second
