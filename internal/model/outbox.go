package model

import "time"

// 事件类型（触发器消费）
const (
	EventLikeCreated    = "like.created"
	EventFollowCreated  = "follow.created"
	EventCommentCreated = "comment.created"
	EventPostRemixed    = "post.remixed"
	EventReportCreated  = "report.created"
)

// Outbox 事件外发盒：与业务写同事务落地，由触发器分发器轮询消费
type Outbox struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	EventType string `gorm:"type:varchar(32);index;not null"`
	// ActorID 触发动作的用户；SubjectID 事件主体（被关注者 / 帖子作者）
	ActorID   string    `gorm:"type:varchar(36);not null"`
	SubjectID string    `gorm:"type:varchar(36);index;not null"`
	PostID    string    `gorm:"type:varchar(36)"`
	CreatedAt time.Time `gorm:"index"`
	Status    string    `gorm:"type:varchar(16);index"` // pending, processing, done
	// UpdatedAt 兼作 processing 租约时间戳，过期即可被重新 claim
	UpdatedAt   time.Time
	ProcessedAt *time.Time
}

func (Outbox) TableName() string { return "outbox" }
