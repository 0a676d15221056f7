package models

import (
	"time"

	"gorm.io/gorm"
)

// Platforms that can be connected for publishing
var Platforms = []string{"youtube", "tiktok", "instagram", "linkedin"}

// SocialConnection is a per-platform webhook that receives due posts.
type SocialConnection struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     *string   `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	Platform   string    `gorm:"not null;index" json:"platform"`
	WebhookURL string    `gorm:"column:webhook_url;not null;default:''" json:"webhook_url"`
	IsActive   bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *SocialConnection) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	return nil
}
