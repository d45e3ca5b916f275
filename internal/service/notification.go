package service

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/together/internal/model"
	"github.com/d60-Lab/together/internal/repository"
)

// Snapshot 通知订阅推送的全量视图
type Snapshot struct {
	Notifications []*model.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

// NotificationService 通知读写与订阅。
// 通知按行存储；unread_count 为冗余计数，
// 标记已读路径会按未读行数重算，保证不漂移
type NotificationService interface {
	List(ctx context.Context, uid string) (*Snapshot, error)
	MarkRead(ctx context.Context, uid, notificationID string) error
	MarkAllRead(ctx context.Context, uid string) error
	// Subscribe 订阅某个接收者的通知变更：订阅即推一次全量快照，
	// 之后每次变更再推。返回的 cancel 负责释放订阅
	Subscribe(ctx context.Context, uid string) (<-chan Snapshot, func(), error)
	// Deliver 触发器扇入：写入一条通知并原子 +1 未读数。
	// 主键幂等，重复投递不重复计数
	Deliver(ctx context.Context, n *model.Notification) error
}

type notificationService struct {
	db        *gorm.DB
	notifRepo repository.NotificationRepository
	rdb       *redis.Client
	pageLimit int
	opTimeout time.Duration
}

func NewNotificationService(db *gorm.DB, notifRepo repository.NotificationRepository, rdb *redis.Client, pageLimit int, opTimeout time.Duration) NotificationService {
	if pageLimit <= 0 {
		pageLimit = 50
	}
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &notificationService{db: db, notifRepo: notifRepo, rdb: rdb, pageLimit: pageLimit, opTimeout: opTimeout}
}

func changeChannel(uid string) string { return "notif:changed:" + uid }

func (s *notificationService) List(ctx context.Context, uid string) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	list, err := s.notifRepo.ListByUser(ctx, uid, s.pageLimit)
	if err != nil {
		return nil, mapErr(err)
	}
	unread, err := s.notifRepo.UnreadCount(ctx, uid)
	if err != nil {
		return nil, mapErr(err)
	}
	if list == nil {
		list = []*model.Notification{}
	}
	return &Snapshot{Notifications: list, UnreadCount: unread}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, uid, notificationID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Notification{}).
			Where("id = ? AND user_id = ?", notificationID, uid).
			Update("read", true)
		if res.Error != nil {
			return res.Error
		}
		return s.recountUnread(tx, uid)
	})
	if err != nil {
		return mapErr(err)
	}
	s.publishChanged(ctx, uid)
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, uid string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Notification{}).
			Where("user_id = ? AND read = ?", uid, false).
			Update("read", true).Error; err != nil {
			return err
		}
		return s.recountUnread(tx, uid)
	})
	if err != nil {
		return mapErr(err)
	}
	s.publishChanged(ctx, uid)
	return nil
}

// recountUnread 以未读行数为准回写计数行（列表是唯一事实来源）。
// 计数在服务端用子查询一条语句回写：UPDATE 持有计数行锁，
// 并发 Deliver 的 +1 被串行化，不存在先读后写的覆盖窗口
func (s *notificationService) recountUnread(tx *gorm.DB, uid string) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.NotificationCounter{UserID: uid}).Error; err != nil {
		return err
	}
	return tx.Model(&model.NotificationCounter{}).
		Where("user_id = ?", uid).
		Update("unread_count", gorm.Expr(
			"(SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = ?)", uid, false)).Error
}

func (s *notificationService) Deliver(ctx context.Context, n *model.Notification) error {
	// 自己触发的动作不通知自己
	if n.UserID == n.FromUserID {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(n)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		counter := &model.NotificationCounter{UserID: n.UserID, UnreadCount: 1}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{"unread_count": gorm.Expr("unread_count + ?", 1)}),
		}).Create(counter).Error
	})
	if err != nil {
		return mapErr(err)
	}
	s.publishChanged(ctx, n.UserID)
	return nil
}

func (s *notificationService) publishChanged(ctx context.Context, uid string) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Publish(context.WithoutCancel(ctx), changeChannel(uid), "1").Err()
}

func (s *notificationService) Subscribe(ctx context.Context, uid string) (<-chan Snapshot, func(), error) {
	if s.rdb == nil {
		return nil, nil, ErrUnavailable
	}
	sub := s.rdb.Subscribe(ctx, changeChannel(uid))
	out := make(chan Snapshot, 1)
	done := make(chan struct{})

	push := func() {
		snap, err := s.List(ctx, uid)
		if err != nil {
			return
		}
		select {
		case out <- *snap:
		default:
			// 慢消费者只保留最新快照
			select {
			case <-out:
			default:
			}
			select {
			case out <- *snap:
			default:
			}
		}
	}

	go func() {
		defer close(out)
		push()
		ch := sub.Channel()
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
				push()
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	// cancel 可能被调用方与 defer 各调一次，只收尾一次
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return out, cancel, nil
}
