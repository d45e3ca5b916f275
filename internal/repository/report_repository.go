package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
)

type ReportRepository interface {
	CountByPost(ctx context.Context, postID string) (int64, error)
	ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Report, error)
}

type reportRepository struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepository{db: db} }

func (r *reportRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Report{}).Where("post_id = ?", postID).Count(&cnt).Error
	return cnt, err
}

func (r *reportRepository) ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Report, error) {
	var res []*model.Report
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
