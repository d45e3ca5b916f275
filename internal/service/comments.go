package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
	"github.com/d60-Lab/together/internal/repository"
)

const maxCommentLen = 1024

// CommentService 评论与 comments_count 的一致性维护
type CommentService interface {
	AddComment(ctx context.Context, postID, authorID, text string) (*model.Comment, error)
	// DeleteComment 仅评论作者可删
	DeleteComment(ctx context.Context, postID, commentID, actorID string) error
	ListComments(ctx context.Context, postID string, page, pageSize int) ([]*model.Comment, error)
}

type commentService struct {
	db          *gorm.DB
	commentRepo repository.CommentRepository
	opTimeout   time.Duration
}

func NewCommentService(db *gorm.DB, commentRepo repository.CommentRepository, opTimeout time.Duration) CommentService {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &commentService{db: db, commentRepo: commentRepo, opTimeout: opTimeout}
}

func (s *commentService) AddComment(ctx context.Context, postID, authorID, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxCommentLen {
		return nil, ErrValidation
	}
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	comment := &model.Comment{ID: uuid.New().String(), PostID: postID, AuthorID: authorID, Text: text}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Select("id", "author_id").Where("id = ?", postID).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Post{}).Where("id = ?", postID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error; err != nil {
			return err
		}
		out := &model.Outbox{
			ID:        uuid.New().String(),
			EventType: model.EventCommentCreated,
			ActorID:   authorID,
			SubjectID: post.AuthorID,
			PostID:    postID,
			Status:    "pending",
		}
		return tx.Create(out).Error
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, postID, commentID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Comment
		if err := tx.Where("id = ? AND post_id = ?", commentID, postID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if c.AuthorID != actorID {
			return ErrPermissionDenied
		}
		res := tx.Where("id = ?", commentID).Delete(&model.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&model.Post{}).
			Where("id = ? AND comments_count > 0", postID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - ?", 1)).Error
	})
	return mapErr(err)
}

func (s *commentService) ListComments(ctx context.Context, postID string, page, pageSize int) ([]*model.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	res, err := s.commentRepo.ListByPost(ctx, postID, (page-1)*pageSize, pageSize)
	return res, mapErr(err)
}
