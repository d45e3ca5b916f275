package model

import "time"

// 媒体类型
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
)

// Post 内容主体；likes/comments/remix 计数为冗余列，
// 只允许原子增量更新，禁止读改写
type Post struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AuthorID       string    `gorm:"type:varchar(36);index:idx_post_author;not null" json:"author_id"`
	Prompt         string    `gorm:"type:text" json:"prompt"`
	NegativePrompt string    `gorm:"type:text" json:"negative_prompt,omitempty"`
	Model          string    `gorm:"type:varchar(64)" json:"model,omitempty"`
	MediaType      string    `gorm:"type:varchar(16);not null;default:image" json:"media_type"`
	MediaURL       string    `gorm:"type:varchar(512);not null" json:"media_url"`
	ThumbnailURL   string    `gorm:"type:varchar(512)" json:"thumbnail_url,omitempty"`
	LikesCount     int64     `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount  int64     `gorm:"not null;default:0" json:"comments_count"`
	RemixCount     int64     `gorm:"not null;default:0" json:"remix_count"`
	IsPublic       bool      `gorm:"default:true;index" json:"is_public"`
	// OriginalPostID 二创来源帖（remix 链）
	OriginalPostID string    `gorm:"type:varchar(36);index:idx_post_original" json:"original_post_id,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
}

func (Post) TableName() string { return "posts" }
