package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
)

type NotificationRepository interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error) {
	var res []*model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

// UnreadCount 读取冗余计数行；缺行视为 0
func (r *notificationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var counter model.NotificationCounter
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.UnreadCount, nil
}
