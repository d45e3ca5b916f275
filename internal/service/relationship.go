package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/together/internal/cache"
	"github.com/d60-Lab/together/internal/model"
	"github.com/d60-Lab/together/internal/repository"
)

// RelationshipService 关系链服务：正向边、反向粉丝索引与双方计数
// 在同一事务内落地（反向索引不再异步冗余）
type RelationshipService interface {
	Follow(ctx context.Context, fromUserID, toUserID string) error
	Unfollow(ctx context.Context, fromUserID, toUserID string) error
	IsFollowing(ctx context.Context, fromUserID, toUserID string) (bool, error)
	ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error)
	ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error)
	// FollowStats 按边表实数统计（冗余计数的对照口径）
	FollowStats(ctx context.Context, userID string) (fans, following int64, err error)
}

type relationshipService struct {
	db         *gorm.DB
	followRepo repository.FollowRepository
	fanRepo    repository.FanRepository
	fanCache   *cache.FollowerCache
	opTimeout  time.Duration
}

func NewRelationshipService(db *gorm.DB, followRepo repository.FollowRepository, fanRepo repository.FanRepository, fanCache *cache.FollowerCache, opTimeout time.Duration) RelationshipService {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &relationshipService{db: db, followRepo: followRepo, fanRepo: fanRepo, fanCache: fanCache, opTimeout: opTimeout}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == toUserID {
		return ErrFollowSelf
	}
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var followee model.User
		if err := tx.Select("id").Where("id = ?", toUserID).First(&followee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		f := &model.Follow{ID: uuid.New().String(), FollowerID: fromUserID, FolloweeID: toUserID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(f)
		if res.Error != nil {
			return res.Error
		}
		// 重复关注：边已在，计数不动
		if res.RowsAffected == 0 {
			return nil
		}

		fan := &model.Fan{ID: uuid.New().String(), UserID: toUserID, FanID: fromUserID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(fan).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", toUserID).
			UpdateColumn("followers_count", gorm.Expr("followers_count + ?", 1)).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", fromUserID).
			UpdateColumn("following_count", gorm.Expr("following_count + ?", 1)).Error; err != nil {
			return err
		}
		out := &model.Outbox{
			ID:        uuid.New().String(),
			EventType: model.EventFollowCreated,
			ActorID:   fromUserID,
			SubjectID: toUserID,
			Status:    "pending",
		}
		return tx.Create(out).Error
	})
	if err != nil {
		return mapErr(err)
	}
	if s.fanCache != nil {
		s.fanCache.Invalidate(ctx, toUserID)
	}
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND followee_id = ?", fromUserID, toUserID).Delete(&model.Follow{})
		if res.Error != nil {
			return res.Error
		}
		// 边不存在则整体 no-op，防止计数被减穿
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Where("user_id = ? AND fan_id = ?", toUserID, fromUserID).Delete(&model.Fan{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ? AND followers_count > 0", toUserID).
			UpdateColumn("followers_count", gorm.Expr("followers_count - ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ? AND following_count > 0", fromUserID).
			UpdateColumn("following_count", gorm.Expr("following_count - ?", 1)).Error
	})
	if err != nil {
		return mapErr(err)
	}
	if s.fanCache != nil {
		s.fanCache.Invalidate(ctx, toUserID)
	}
	return nil
}

func (s *relationshipService) IsFollowing(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	ok, err := s.followRepo.Exists(ctx, fromUserID, toUserID)
	return ok, mapErr(err)
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, mapErr(err)
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FolloweeID
	}
	return res, nil
}

func (s *relationshipService) FollowStats(ctx context.Context, userID string) (int64, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	fans, err := s.fanRepo.CountFans(ctx, userID)
	if err != nil {
		return 0, 0, mapErr(err)
	}
	following, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return 0, 0, mapErr(err)
	}
	return fans, following, nil
}

func (s *relationshipService) ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if s.fanCache != nil {
		ids, err := s.fanCache.ListFanIDs(ctx, userID, page, pageSize)
		if err == nil {
			return ids, nil
		}
		// 缓存失败降级走库
	}
	offset := (page - 1) * pageSize
	items, err := s.fanRepo.ListFans(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, mapErr(err)
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FanID
	}
	return res, nil
}
