package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
)

// PostInput 发帖参数
type PostInput struct {
	Prompt         string
	NegativePrompt string
	Model          string
	MediaType      string
	MediaURL       string
	ThumbnailURL   string
	IsPublic       bool
}

// Publisher 发帖 / 二创：帖子与 outbox 事件同事务落地
type Publisher struct {
	db        *gorm.DB
	opTimeout time.Duration
}

func NewPublisher(db *gorm.DB, opTimeout time.Duration) *Publisher {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &Publisher{db: db, opTimeout: opTimeout}
}

// CreatePost 普通发帖；被封禁用户拒绝
func (p *Publisher) CreatePost(ctx context.Context, authorID string, in PostInput) (*model.Post, error) {
	return p.publish(ctx, authorID, "", in)
}

// Remix 基于原帖二创：新帖记录 original_post_id，原帖 remix_count 原子 +1
func (p *Publisher) Remix(ctx context.Context, authorID, originalPostID string, in PostInput) (*model.Post, error) {
	if originalPostID == "" {
		return nil, ErrValidation
	}
	return p.publish(ctx, authorID, originalPostID, in)
}

func (p *Publisher) publish(ctx context.Context, authorID, originalPostID string, in PostInput) (*model.Post, error) {
	if in.MediaURL == "" {
		return nil, ErrValidation
	}
	switch in.MediaType {
	case model.MediaImage, model.MediaVideo, model.MediaAudio:
	default:
		return nil, ErrValidation
	}
	ctx, cancel := context.WithTimeout(ctx, p.opTimeout)
	defer cancel()

	post := &model.Post{
		ID:             uuid.New().String(),
		AuthorID:       authorID,
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		Model:          in.Model,
		MediaType:      in.MediaType,
		MediaURL:       in.MediaURL,
		ThumbnailURL:   in.ThumbnailURL,
		IsPublic:       in.IsPublic,
		OriginalPostID: originalPostID,
	}
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author model.User
		if err := tx.Select("id", "is_banned").Where("id = ?", authorID).First(&author).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if author.IsBanned {
			return ErrBanned
		}

		if originalPostID != "" {
			var original model.Post
			if err := tx.Select("id", "author_id").Where("id = ?", originalPostID).First(&original).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			if err := tx.Create(post).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Post{}).Where("id = ?", originalPostID).
				UpdateColumn("remix_count", gorm.Expr("remix_count + ?", 1)).Error; err != nil {
				return err
			}
			out := &model.Outbox{
				ID:        uuid.New().String(),
				EventType: model.EventPostRemixed,
				ActorID:   authorID,
				SubjectID: original.AuthorID,
				PostID:    originalPostID,
				Status:    "pending",
			}
			return tx.Create(out).Error
		}
		return tx.Create(post).Error
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return post, nil
}
