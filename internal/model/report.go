package model

import "time"

// Report 举报记录（存在性 + 可选理由）
type Report struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	PostID     string `gorm:"type:varchar(36);index:idx_report_post;index:idx_report_pair,unique;not null"`
	ReporterID string `gorm:"type:varchar(36);not null;index:idx_report_pair,unique"`
	// 复合唯一键，同一人对同一帖只计一次
	// idx_report_pair = (post_id, reporter_id)
	Reason    string `gorm:"type:varchar(512)"`
	CreatedAt time.Time
}

func (Report) TableName() string { return "reports" }
