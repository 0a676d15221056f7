package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Content status values
const (
	StatusDraft     = "draft"
	StatusReady     = "ready"
	StatusScheduled = "scheduled"
	StatusPublished = "published"
)

// Variant names accepted by Content.Variant. They match the keys of a repurpose result.
const (
	VariantOriginal      = "original"
	VariantYouTube       = "youtube"
	VariantYouTubeShorts = "youtubeShorts"
	VariantTikTok        = "tiktok"
	VariantInstagram     = "instagram"
	VariantLinkedIn      = "linkedin"
	VariantBlog          = "blog"
	VariantCarousel      = "carousel"
	VariantThread        = "thread"
	VariantNewsletter    = "newsletter"
)

// Content is a saved library item: the original script plus one optional JSON
// document per platform variant.
type Content struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         *string        `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	Topic          string         `gorm:"not null" json:"topic"`
	ContentType    string         `gorm:"not null;default:'video'" json:"content_type"`
	OriginalScript string         `gorm:"type:text;not null" json:"original_script"`
	YouTube        datatypes.JSON `gorm:"column:youtube_version" json:"youtube_version,omitempty"`
	YouTubeShorts  datatypes.JSON `gorm:"column:youtube_shorts_version" json:"youtube_shorts_version,omitempty"`
	TikTok         datatypes.JSON `gorm:"column:tiktok_version" json:"tiktok_version,omitempty"`
	Instagram      datatypes.JSON `gorm:"column:instagram_version" json:"instagram_version,omitempty"`
	LinkedIn       datatypes.JSON `gorm:"column:linkedin_version" json:"linkedin_version,omitempty"`
	Blog           datatypes.JSON `gorm:"column:blog_version" json:"blog_version,omitempty"`
	Carousel       datatypes.JSON `gorm:"column:carousel_version" json:"carousel_version,omitempty"`
	Thread         datatypes.JSON `gorm:"column:thread_version" json:"thread_version,omitempty"`
	Newsletter     datatypes.JSON `gorm:"column:newsletter_version" json:"newsletter_version,omitempty"`
	Status         string         `gorm:"not null;default:'ready';index" json:"status"`
	ScheduledFor   *time.Time     `gorm:"index" json:"scheduled_for"`
	Platform       *string        `json:"platform"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (Content) TableName() string {
	return "content"
}

// BeforeCreate assigns a UUID when the caller did not.
func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

func (c *Content) variantField(name string) *datatypes.JSON {
	switch name {
	case VariantYouTube:
		return &c.YouTube
	case VariantYouTubeShorts:
		return &c.YouTubeShorts
	case VariantTikTok:
		return &c.TikTok
	case VariantInstagram:
		return &c.Instagram
	case VariantLinkedIn:
		return &c.LinkedIn
	case VariantBlog:
		return &c.Blog
	case VariantCarousel:
		return &c.Carousel
	case VariantThread:
		return &c.Thread
	case VariantNewsletter:
		return &c.Newsletter
	}
	return nil
}

var variantColumns = map[string]string{
	VariantYouTube:       "youtube_version",
	VariantYouTubeShorts: "youtube_shorts_version",
	VariantTikTok:        "tiktok_version",
	VariantInstagram:     "instagram_version",
	VariantLinkedIn:      "linkedin_version",
	VariantBlog:          "blog_version",
	VariantCarousel:      "carousel_version",
	VariantThread:        "thread_version",
	VariantNewsletter:    "newsletter_version",
}

// VariantColumn returns the database column holding variant name.
func VariantColumn(name string) (string, bool) {
	col, ok := variantColumns[name]
	return col, ok
}

// Variant returns the stored document for name; ok is false for unknown or empty variants.
func (c *Content) Variant(name string) (json.RawMessage, bool) {
	f := c.variantField(name)
	if f == nil || len(*f) == 0 || string(*f) == "null" {
		return nil, false
	}
	return json.RawMessage(*f), true
}

// SetVariant stores raw under name. It reports false for unknown variant names.
func (c *Content) SetVariant(name string, raw json.RawMessage) bool {
	f := c.variantField(name)
	if f == nil {
		return false
	}
	*f = datatypes.JSON(raw)
	return true
}

// Schedule moves the record onto the calendar.
func (c *Content) Schedule(at time.Time, platform string) {
	at = at.UTC()
	c.ScheduledFor = &at
	c.Platform = &platform
	c.Status = StatusScheduled
}

// Unschedule takes the record off the calendar and marks it ready again.
func (c *Content) Unschedule() {
	c.ScheduledFor = nil
	c.Platform = nil
	c.Status = StatusReady
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}
