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

// EngagementService 点赞一致性层：边与计数同事务提交，
// 计数只用原子增量表达式，杜绝读改写丢更新
type EngagementService interface {
	// ToggleLike 返回切换后的点赞状态。方向由边的当前存在性决定，
	// 不信任调用方缓存的 liked 标志
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	CheckIfLiked(ctx context.Context, postID, userID string) (bool, error)
	ListLikers(ctx context.Context, postID string, page, pageSize int) ([]string, error)
}

type engagementService struct {
	db        *gorm.DB
	likeRepo  repository.LikeRepository
	opTimeout time.Duration
}

func NewEngagementService(db *gorm.DB, likeRepo repository.LikeRepository, opTimeout time.Duration) EngagementService {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &engagementService{db: db, likeRepo: likeRepo, opTimeout: opTimeout}
}

func (s *engagementService) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	var liked bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Select("id", "author_id").Where("id = ?", postID).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// 先尝试建边；冲突即说明已点过赞，转为取消
		edge := &model.Like{ID: uuid.New().String(), PostID: postID, UserID: userID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(edge)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			liked = true
			if err := tx.Model(&model.Post{}).Where("id = ?", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error; err != nil {
				return err
			}
			out := &model.Outbox{
				ID:        uuid.New().String(),
				EventType: model.EventLikeCreated,
				ActorID:   userID,
				SubjectID: post.AuthorID,
				PostID:    postID,
				Status:    "pending",
			}
			return tx.Create(out).Error
		}

		del := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.Like{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 1 {
			return tx.Model(&model.Post{}).
				Where("id = ? AND likes_count > 0", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count - ?", 1)).Error
		}
		// 并发方已抢先删掉，计数不动
		return nil
	})
	if err != nil {
		return false, mapErr(err)
	}
	return liked, nil
}

func (s *engagementService) CheckIfLiked(ctx context.Context, postID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	ok, err := s.likeRepo.Exists(ctx, postID, userID)
	return ok, mapErr(err)
}

func (s *engagementService) ListLikers(ctx context.Context, postID string, page, pageSize int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	ids, err := s.likeRepo.ListUserIDs(ctx, postID, (page-1)*pageSize, pageSize)
	return ids, mapErr(err)
}
