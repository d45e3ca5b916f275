package model

import "time"

// 通知类型
const (
	NotificationLike    = "like"
	NotificationRemix   = "remix"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// Notification 通知项（按 user_id 切分，时间序独立成行，
// 取代把整张列表塞进单文档的写法）
type Notification struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID     string    `gorm:"type:varchar(36);index:idx_notif_user;index:idx_notif_user_created" json:"user_id"`
	Type       string    `gorm:"type:varchar(16);not null" json:"type"`
	FromUserID string    `gorm:"type:varchar(36);not null" json:"from_user_id"`
	PostID     string    `gorm:"type:varchar(36)" json:"post_id,omitempty"`
	Read       bool      `gorm:"default:false;index:idx_notif_user_read" json:"read"`
	CreatedAt  time.Time `gorm:"index:idx_notif_user_created" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// NotificationCounter 每个接收者的未读数冗余行
// 不变式：unread_count == 未读通知行数
type NotificationCounter struct {
	UserID      string `gorm:"primaryKey;type:varchar(36)"`
	UnreadCount int64  `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

func (NotificationCounter) TableName() string { return "notification_counters" }
