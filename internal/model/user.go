package model

import "time"

// User 用户主体；粉丝/关注计数为冗余列，由关系链事务维护
type User struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username       string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"username"`
	DisplayName    string    `gorm:"type:varchar(64)" json:"display_name"`
	PhotoURL       string    `gorm:"type:varchar(512)" json:"photo_url,omitempty"`
	Bio            string    `gorm:"type:varchar(512)" json:"bio,omitempty"`
	IsAdmin        bool      `gorm:"default:false" json:"is_admin"`
	IsBanned       bool      `gorm:"default:false;index" json:"is_banned"`
	FollowersCount int64     `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int64     `gorm:"not null;default:0" json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
}

func (User) TableName() string { return "users" }
