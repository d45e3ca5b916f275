package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
)

// FollowerSnapshot contains the minimal user info rendered on follower pages.
type FollowerSnapshot struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// FollowerCache serves follower-list reads from a Redis list index backed by
// the fans table. The index holds follower IDs newest-first; user snapshots
// are hydrated separately so one profile edit does not invalidate every list.
type FollowerCache struct {
	db    *gorm.DB
	cache *redis.Client
	ttl   time.Duration
}

func NewFollowerCache(db *gorm.DB, cache *redis.Client, ttl time.Duration) *FollowerCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FollowerCache{db: db, cache: cache, ttl: ttl}
}

func indexKey(userID string) string { return "followers:index:" + userID }

// ListFanIDs returns one page of follower IDs, rebuilding the index on miss.
func (s *FollowerCache) ListFanIDs(ctx context.Context, userID string, page, size int) ([]string, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	end := start + size - 1

	key := indexKey(userID)
	exists, err := s.cache.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists > 0 {
		return s.cache.LRange(ctx, key, int64(start), int64(end)).Result()
	}

	allIDs, err := s.loadFanIDsAndCache(ctx, userID)
	if err != nil {
		return nil, err
	}
	if start >= len(allIDs) {
		return []string{}, nil
	}
	endIdx := start + size
	if endIdx > len(allIDs) {
		endIdx = len(allIDs)
	}
	return allIDs[start:endIdx], nil
}

// Snapshots resolves user IDs to display snapshots, MGET first, DB for misses.
func (s *FollowerCache) Snapshots(ctx context.Context, ids []string) ([]FollowerSnapshot, error) {
	if len(ids) == 0 {
		return []FollowerSnapshot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "user:snap:" + id
	}

	cached := make(map[string]FollowerSnapshot, len(ids))
	if vals, err := s.cache.MGet(ctx, keys...).Result(); err == nil {
		for i, v := range vals {
			str, ok := v.(string)
			if !ok {
				continue
			}
			var snap FollowerSnapshot
			if uErr := json.Unmarshal([]byte(str), &snap); uErr == nil {
				cached[ids[i]] = snap
			}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		var users []model.User
		if err := s.db.WithContext(ctx).Where("id IN ?", missing).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			snap := FollowerSnapshot{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
			cached[u.ID] = snap
			if payload, err := json.Marshal(snap); err == nil {
				_ = s.cache.Set(ctx, "user:snap:"+u.ID, payload, s.ttl).Err()
			}
		}
	}

	result := make([]FollowerSnapshot, 0, len(ids))
	for _, id := range ids {
		if snap, ok := cached[id]; ok {
			result = append(result, snap)
		}
	}
	return result, nil
}

// Invalidate drops the index for a user after a follow-graph write.
func (s *FollowerCache) Invalidate(ctx context.Context, userID string) {
	_ = s.cache.Del(context.WithoutCancel(ctx), indexKey(userID)).Err()
}

func (s *FollowerCache) loadFanIDsAndCache(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).
		Table("fans").
		Select("fan_id").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(&ids).Error; err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		key := indexKey(userID)
		pipe := s.cache.Pipeline()
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, interfaceSlice(ids)...)
		pipe.Expire(ctx, key, s.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("refresh follower index: %w", err)
		}
	}
	return ids, nil
}

func interfaceSlice(strs []string) []interface{} {
	result := make([]interface{}, len(strs))
	for i, s := range strs {
		result[i] = s
	}
	return result
}
