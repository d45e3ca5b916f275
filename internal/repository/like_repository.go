package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
)

type LikeRepository interface {
	Exists(ctx context.Context, postID, userID string) (bool, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	ListUserIDs(ctx context.Context, postID string, offset, limit int) ([]string, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Exists(ctx context.Context, postID, userID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *likeRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Where("post_id = ?", postID).Count(&cnt).Error
	return cnt, err
}

func (r *likeRepository) ListUserIDs(ctx context.Context, postID string, offset, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Select("user_id").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&ids).Error
	return ids, err
}
