package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
	"github.com/d60-Lab/together/pkg/logger"
)

// TriggerWorker 触发器分发器：轮询 outbox 的 pending 事件，
// 扇入通知并执行举报自动治理（取代原先的 serverless 触发器）
type TriggerWorker struct {
	db              *gorm.DB
	notifSvc        NotificationService
	reportThreshold int
	claimLimit      int
	pollInterval    time.Duration
	workers         int
	// lease processing 状态的租约：持有者崩溃后过期事件回到可 claim 集合
	lease time.Duration
}

func NewTriggerWorker(db *gorm.DB, notifSvc NotificationService, reportThreshold, workers, claimLimit int, pollInterval time.Duration) *TriggerWorker {
	if reportThreshold <= 0 {
		reportThreshold = 5
	}
	if workers <= 0 {
		workers = 2
	}
	if claimLimit <= 0 {
		claimLimit = 64
	}
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &TriggerWorker{db: db, notifSvc: notifSvc, reportThreshold: reportThreshold, workers: workers, claimLimit: claimLimit, pollInterval: pollInterval, lease: 30 * time.Second}
}

// Start 启动若干 worker 轮询处理 outbox；返回停止函数。
func (w *TriggerWorker) Start() func(context.Context) error {
	stop := make(chan struct{})
	for i := 0; i < w.workers; i++ {
		go w.loop(stop)
	}
	return func(ctx context.Context) error { close(stop); return nil }
}

func (w *TriggerWorker) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := w.ProcessOnce(context.Background()); err != nil {
				logger.Warn("trigger dispatch failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce claim 一批事件并逐条分发：pending 之外，
// 还回收租约过期的 processing（持有者崩溃或落盘失败的事件不会永久搁浅）
func (w *TriggerWorker) ProcessOnce(ctx context.Context) error {
	var batch []model.Outbox
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := `
            SELECT id, event_type, actor_id, subject_id, post_id, created_at
            FROM outbox
            WHERE status = 'pending'
               OR (status = 'processing' AND updated_at < ?)
            ORDER BY created_at
            LIMIT ?`
		// 多实例部署依赖行锁防重复 claim；sqlite 单写者无此语法
		if w.db.Dialector.Name() == "postgres" {
			q += `
            FOR UPDATE SKIP LOCKED`
		}
		staleBefore := time.Now().Add(-w.lease)
		if err := tx.Raw(q, staleBefore, w.claimLimit).Scan(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.Outbox{}).Where("id IN ?", ids).Update("status", "processing").Error
	})
	if err != nil {
		return err
	}

	for _, ev := range batch {
		if err := w.dispatch(ctx, &ev); err != nil {
			logger.Warn("trigger event failed",
				zap.String("event", ev.EventType), zap.String("id", ev.ID), zap.Error(err))
			// 放回 pending 等待重试
			_ = w.db.WithContext(ctx).Model(&model.Outbox{}).
				Where("id = ?", ev.ID).Update("status", "pending").Error
			continue
		}
		now := time.Now()
		_ = w.db.WithContext(ctx).Model(&model.Outbox{}).
			Where("id = ?", ev.ID).
			Updates(map[string]any{"status": "done", "processed_at": now}).Error
	}
	return nil
}

func (w *TriggerWorker) dispatch(ctx context.Context, ev *model.Outbox) error {
	switch ev.EventType {
	case model.EventLikeCreated:
		return w.notifSvc.Deliver(ctx, &model.Notification{
			// 主键与原事件一一对应，重复投递天然幂等
			ID:         fmt.Sprintf("%s_like_%s", ev.PostID, ev.ActorID),
			UserID:     ev.SubjectID,
			Type:       model.NotificationLike,
			FromUserID: ev.ActorID,
			PostID:     ev.PostID,
		})
	case model.EventFollowCreated:
		return w.notifSvc.Deliver(ctx, &model.Notification{
			ID:         fmt.Sprintf("%s_follow_%s", ev.SubjectID, ev.ActorID),
			UserID:     ev.SubjectID,
			Type:       model.NotificationFollow,
			FromUserID: ev.ActorID,
		})
	case model.EventCommentCreated:
		return w.notifSvc.Deliver(ctx, &model.Notification{
			ID:         uuid.New().String(),
			UserID:     ev.SubjectID,
			Type:       model.NotificationComment,
			FromUserID: ev.ActorID,
			PostID:     ev.PostID,
		})
	case model.EventPostRemixed:
		return w.notifSvc.Deliver(ctx, &model.Notification{
			ID:         uuid.New().String(),
			UserID:     ev.SubjectID,
			Type:       model.NotificationRemix,
			FromUserID: ev.ActorID,
			PostID:     ev.PostID,
		})
	case model.EventReportCreated:
		return w.moderate(ctx, ev.PostID)
	default:
		logger.Warn("unknown outbox event", zap.String("event", ev.EventType))
		return nil
	}
}

// moderate 统计举报数，达到阈值即封禁作者并删帖
func (w *TriggerWorker) moderate(ctx context.Context, postID string) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&model.Report{}).Where("post_id = ?", postID).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt < int64(w.reportThreshold) {
			return nil
		}
		var post model.Post
		if err := tx.Select("id", "author_id").Where("id = ?", postID).First(&post).Error; err != nil {
			// 帖子已被并发治理删除
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", post.AuthorID).
			Update("is_banned", true).Error; err != nil {
			return err
		}
		logger.Info("auto moderation: author banned, post removed",
			zap.String("post", postID), zap.String("author", post.AuthorID), zap.Int64("reports", cnt))
		return tx.Where("id = ?", postID).Delete(&model.Post{}).Error
	})
}
