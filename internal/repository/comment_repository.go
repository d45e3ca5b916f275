package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
)

type CommentRepository interface {
	ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Comment, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Comment, error) {
	var res []*model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
