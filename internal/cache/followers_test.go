package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
)

func setupCache(t *testing.T) (*FollowerCache, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Fan{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewFollowerCache(db, rdb, time.Minute), db, mr
}

func seedFan(t *testing.T, db *gorm.DB, userID, fanID string, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&model.Fan{ID: uuid.New().String(), UserID: userID, FanID: fanID, CreatedAt: at}).Error)
}

func TestListFanIDs_BuildsIndexOnMiss(t *testing.T) {
	fc, db, mr := setupCache(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	seedFan(t, db, "star", "f1", base)
	seedFan(t, db, "star", "f2", base.Add(time.Minute))
	seedFan(t, db, "star", "f3", base.Add(2*time.Minute))

	// 首次访问回源并重建索引，最新关注排最前
	ids, err := fc.ListFanIDs(ctx, "star", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"f3", "f2", "f1"}, ids)
	assert.True(t, mr.Exists("followers:index:star"))

	// 命中索引后直接走 Redis，不再回源
	require.NoError(t, db.Where("fan_id = ?", "f3").Delete(&model.Fan{}).Error)
	ids, err = fc.ListFanIDs(ctx, "star", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"f3", "f2", "f1"}, ids)
}

func TestListFanIDs_Pagination(t *testing.T) {
	fc, db, _ := setupCache(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, fan := range []string{"f1", "f2", "f3", "f4", "f5"} {
		seedFan(t, db, "star", fan, base.Add(time.Duration(i)*time.Minute))
	}

	page1, err := fc.ListFanIDs(ctx, "star", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"f5", "f4"}, page1)

	page3, err := fc.ListFanIDs(ctx, "star", 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, page3)

	empty, err := fc.ListFanIDs(ctx, "star", 4, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInvalidate_DropsIndex(t *testing.T) {
	fc, db, mr := setupCache(t)
	ctx := context.Background()

	seedFan(t, db, "star", "f1", time.Now())
	_, err := fc.ListFanIDs(ctx, "star", 1, 10)
	require.NoError(t, err)
	require.True(t, mr.Exists("followers:index:star"))

	fc.Invalidate(ctx, "star")
	assert.False(t, mr.Exists("followers:index:star"))

	// 失效后下一次读看到新写入的边
	seedFan(t, db, "star", "f2", time.Now().Add(time.Minute))
	ids, err := fc.ListFanIDs(ctx, "star", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"f2", "f1"}, ids)
}

func TestSnapshots_HydratesAndCaches(t *testing.T) {
	fc, db, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&model.User{ID: "u1", Username: "alice", DisplayName: "Alice"}).Error)
	require.NoError(t, db.Create(&model.User{ID: "u2", Username: "bob", DisplayName: "Bob"}).Error)

	snaps, err := fc.Snapshots(ctx, []string{"u1", "u2", "ghost"})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "alice", snaps[0].Username)
	assert.Equal(t, "bob", snaps[1].Username)

	// 回填单用户快照，命中后不再读库
	assert.True(t, mr.Exists("user:snap:u1"))
	require.NoError(t, db.Where("id = ?", "u1").Delete(&model.User{}).Error)

	snaps, err = fc.Snapshots(ctx, []string{"u1"})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "Alice", snaps[0].DisplayName)
}

func TestSnapshots_Empty(t *testing.T) {
	fc, _, _ := setupCache(t)

	snaps, err := fc.Snapshots(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}
