package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/together/internal/model"
	"github.com/d60-Lab/together/internal/repository"
)

// ModerationService 举报入口；达阈值后的封禁由触发器分发器执行
type ModerationService interface {
	// Report 同一举报人对同一帖只记一次；首次举报投递 report.created 事件
	Report(ctx context.Context, postID, reporterID, reason string) error
	CountReports(ctx context.Context, postID string) (int64, error)
	// ListReports 运营复核用：按时间顺序翻页列出某帖的举报明细
	ListReports(ctx context.Context, postID string, page, pageSize int) ([]*model.Report, error)
}

type moderationService struct {
	db         *gorm.DB
	reportRepo repository.ReportRepository
	opTimeout  time.Duration
}

func NewModerationService(db *gorm.DB, reportRepo repository.ReportRepository, opTimeout time.Duration) ModerationService {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &moderationService{db: db, reportRepo: reportRepo, opTimeout: opTimeout}
}

func (s *moderationService) Report(ctx context.Context, postID, reporterID, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Select("id", "author_id").Where("id = ?", postID).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		rep := &model.Report{ID: uuid.New().String(), PostID: postID, ReporterID: reporterID, Reason: reason}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rep)
		if res.Error != nil {
			return res.Error
		}
		// 重复举报不再触发事件
		if res.RowsAffected == 0 {
			return nil
		}
		out := &model.Outbox{
			ID:        uuid.New().String(),
			EventType: model.EventReportCreated,
			ActorID:   reporterID,
			SubjectID: post.AuthorID,
			PostID:    postID,
			Status:    "pending",
		}
		return tx.Create(out).Error
	})
	return mapErr(err)
}

func (s *moderationService) CountReports(ctx context.Context, postID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	cnt, err := s.reportRepo.CountByPost(ctx, postID)
	return cnt, mapErr(err)
}

func (s *moderationService) ListReports(ctx context.Context, postID string, page, pageSize int) ([]*model.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	res, err := s.reportRepo.ListByPost(ctx, postID, (page-1)*pageSize, pageSize)
	return res, mapErr(err)
}
