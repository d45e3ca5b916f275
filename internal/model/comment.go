package model

import "time"

// Comment 帖子评论，按创建时间升序展示
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"type:varchar(36);index:idx_comment_post;not null" json:"post_id"`
	AuthorID  string    `gorm:"type:varchar(36);index:idx_comment_author;not null" json:"author_id"`
	Text      string    `gorm:"type:varchar(1024);not null" json:"text"`
	CreatedAt time.Time `gorm:"index:idx_comment_post_created" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }
