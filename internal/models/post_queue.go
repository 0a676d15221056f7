package models

import (
	"time"

	"gorm.io/gorm"
)

// Post queue status values
const (
	PostStatusPosted = "posted"
	PostStatusFailed = "failed"
)

// PostQueueEntry records one delivery attempt of a scheduled record to one connection.
type PostQueueEntry struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	ContentID     string     `gorm:"type:varchar(36);not null;index" json:"content_id"`
	ConnectionID  string     `gorm:"type:varchar(36);index" json:"connection_id"`
	Platform      string     `gorm:"not null" json:"platform"`
	ScheduledTime time.Time  `gorm:"not null" json:"scheduled_time"`
	Status        string     `gorm:"not null;index" json:"status"`
	ErrorMessage  *string    `gorm:"type:text" json:"error_message,omitempty"`
	PostedAt      *time.Time `json:"posted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (PostQueueEntry) TableName() string {
	return "post_queue"
}

func (p *PostQueueEntry) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}
