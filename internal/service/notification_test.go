package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/together/internal/model"
	"github.com/d60-Lab/together/internal/repository"
)

func TestDeliver_IncrementsUnread(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db, repository.NewNotificationRepository(db), nil, 50, testTimeout)
	ctx := context.Background()

	require.NoError(t, svc.Deliver(ctx, &model.Notification{
		ID: "p1_like_u2", UserID: "u1", Type: model.NotificationLike, FromUserID: "u2", PostID: "p1",
	}))

	snap, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.UnreadCount)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, model.NotificationLike, snap.Notifications[0].Type)
	assert.False(t, snap.Notifications[0].Read)
}

// 自己给自己点赞不产生通知
func TestDeliver_SkipsSelf(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db, repository.NewNotificationRepository(db), nil, 50, testTimeout)

	require.NoError(t, svc.Deliver(context.Background(), &model.Notification{
		ID: "p1_like_u1", UserID: "u1", Type: model.NotificationLike, FromUserID: "u1", PostID: "p1",
	}))

	snap, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.UnreadCount)
	assert.Empty(t, snap.Notifications)
}

// 重复投递同一主键只计一次
func TestDeliver_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db, repository.NewNotificationRepository(db), nil, 50, testTimeout)
	ctx := context.Background()

	n := &model.Notification{ID: "p1_like_u2", UserID: "u1", Type: model.NotificationLike, FromUserID: "u2", PostID: "p1"}
	require.NoError(t, svc.Deliver(ctx, n))
	require.NoError(t, svc.Deliver(ctx, &model.Notification{ID: n.ID, UserID: n.UserID, Type: n.Type, FromUserID: n.FromUserID, PostID: n.PostID}))

	snap, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.UnreadCount)
	assert.Len(t, snap.Notifications, 1)
}

func TestMarkRead_RecountsUnread(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db, repository.NewNotificationRepository(db), nil, 50, testTimeout)
	ctx := context.Background()

	require.NoError(t, svc.Deliver(ctx, &model.Notification{ID: "n1", UserID: "u1", Type: model.NotificationLike, FromUserID: "u2", PostID: "p1"}))
	require.NoError(t, svc.Deliver(ctx, &model.Notification{ID: "n2", UserID: "u1", Type: model.NotificationFollow, FromUserID: "u3"}))

	require.NoError(t, svc.MarkRead(ctx, "u1", "n1"))
	snap, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.UnreadCount)

	// 陌生 ID 是 no-op，计数保持一致
	require.NoError(t, svc.MarkRead(ctx, "u1", "missing"))
	snap, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.UnreadCount)
}

func TestMarkAllRead_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db, repository.NewNotificationRepository(db), nil, 50, testTimeout)
	ctx := context.Background()

	require.NoError(t, svc.Deliver(ctx, &model.Notification{ID: "n1", UserID: "u1", Type: model.NotificationLike, FromUserID: "u2", PostID: "p1"}))
	require.NoError(t, svc.Deliver(ctx, &model.Notification{ID: "n2", UserID: "u1", Type: model.NotificationRemix, FromUserID: "u3", PostID: "p2"}))

	require.NoError(t, svc.MarkAllRead(ctx, "u1"))
	first, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.UnreadCount)

	require.NoError(t, svc.MarkAllRead(ctx, "u1"))
	second, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.UnreadCount)
	assert.Equal(t, len(first.Notifications), len(second.Notifications))
	for i := range second.Notifications {
		assert.True(t, second.Notifications[i].Read)
	}
}

// 标记已读与新投递交错后，计数必须等于未读行数（回写走服务端子查询）
func TestUnreadCounter_NoDriftUnderInterleaving(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db, repository.NewNotificationRepository(db), nil, 50, testTimeout)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 25; i++ {
			_ = svc.Deliver(ctx, &model.Notification{
				ID: fmt.Sprintf("n%d", i), UserID: "u1",
				Type: model.NotificationLike, FromUserID: "u2", PostID: "p1",
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 25; i++ {
			_ = svc.MarkAllRead(ctx, "u1")
		}
	}()
	wg.Wait()

	var unreadRows int64
	require.NoError(t, db.Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", "u1", false).
		Count(&unreadRows).Error)
	snap, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, unreadRows, snap.UnreadCount)
}

// 订阅先推全量快照，变更后再推
func TestSubscribe_SnapshotThenUpdates(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	svc := NewNotificationService(db, repository.NewNotificationRepository(db), rdb, 50, testTimeout)
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	require.NoError(t, svc.Deliver(ctx, &model.Notification{ID: "n1", UserID: "u1", Type: model.NotificationLike, FromUserID: "u2", PostID: "p1"}))

	ch, cancel, err := svc.Subscribe(ctx, "u1")
	require.NoError(t, err)
	defer cancel()

	select {
	case snap := <-ch:
		assert.Equal(t, int64(1), snap.UnreadCount)
	case <-time.After(3 * time.Second):
		t.Fatal("no initial snapshot")
	}

	require.NoError(t, svc.Deliver(ctx, &model.Notification{ID: "n2", UserID: "u1", Type: model.NotificationFollow, FromUserID: "u3"}))

	select {
	case snap := <-ch:
		assert.Equal(t, int64(2), snap.UnreadCount)
	case <-time.After(3 * time.Second):
		t.Fatal("no update snapshot")
	}
}

// 未配置 redis 时订阅返回明确的不可用错误
func TestSubscribe_NoRedisUnavailable(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db, repository.NewNotificationRepository(db), nil, 50, testTimeout)

	_, _, err := svc.Subscribe(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

// 显式取消与 defer 会各调一次 cancel，重复调用必须安全
func TestSubscribe_CancelTwice(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	svc := NewNotificationService(db, repository.NewNotificationRepository(db), rdb, 50, testTimeout)

	_, cancel, err := svc.Subscribe(context.Background(), "u1")
	require.NoError(t, err)
	cancel()
	assert.NotPanics(t, func() { cancel() })
}
