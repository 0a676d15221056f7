package ai

import (
	"encoding/json"
	"fmt"
)

// Result is a normalized model answer tagged by what was asked for. Payload is the
// JSON exactly as extracted; the typed accessors decode it on demand. Every field of
// the typed records is optional because the model does not guarantee any of them.
type Result struct {
	RequestType RequestType
	ContentType ContentType
	Payload     json.RawMessage
}

// VideoScript is the generate+video shape.
type VideoScript struct {
	Title     string   `json:"title,omitempty"`
	Hook      string   `json:"hook,omitempty"`
	Script    string   `json:"script,omitempty"`
	KeyPoints []string `json:"keyPoints,omitempty"`
	CTA       string   `json:"cta,omitempty"`
}

// BlogPost is the generate+blog shape.
type BlogPost struct {
	Title           string   `json:"title,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Content         string   `json:"content,omitempty"`
	KeyPoints       []string `json:"keyPoints,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	CTA             string   `json:"cta,omitempty"`
}

type Slide struct {
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body,omitempty"`
	Visual  string `json:"visual,omitempty"`
}

// Carousel is the generate+carousel shape.
type Carousel struct {
	Title    string   `json:"title,omitempty"`
	Slides   []Slide  `json:"slides,omitempty"`
	Caption  string   `json:"caption,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
}

// Thread is the generate+thread shape.
type Thread struct {
	Hook     string   `json:"hook,omitempty"`
	Tweets   []string `json:"tweets,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
	CTA      string   `json:"cta,omitempty"`
}

// LinkedInPost is the generate+linkedin shape.
type LinkedInPost struct {
	Hook      string   `json:"hook,omitempty"`
	Content   string   `json:"content,omitempty"`
	KeyPoints []string `json:"keyPoints,omitempty"`
	Hashtags  []string `json:"hashtags,omitempty"`
	CTA       string   `json:"cta,omitempty"`
}

type NewsletterSection struct {
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body,omitempty"`
}

// Newsletter is the generate+newsletter shape.
type Newsletter struct {
	Subject     string              `json:"subject,omitempty"`
	PreviewText string              `json:"previewText,omitempty"`
	Greeting    string              `json:"greeting,omitempty"`
	Sections    []NewsletterSection `json:"sections,omitempty"`
	CTA         string              `json:"cta,omitempty"`
	SignOff     string              `json:"signOff,omitempty"`
}

type YouTubeVersion struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
	Script      string   `json:"script,omitempty"`
}

type ShortsVersion struct {
	Title    string   `json:"title,omitempty"`
	Hook     string   `json:"hook,omitempty"`
	Script   string   `json:"script,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
}

type TikTokVersion struct {
	Hook            string   `json:"hook,omitempty"`
	Script          string   `json:"script,omitempty"`
	TrendSuggestion string   `json:"trendSuggestion,omitempty"`
	Hashtags        []string `json:"hashtags,omitempty"`
}

type InstagramVersion struct {
	Hook     string   `json:"hook,omitempty"`
	Script   string   `json:"script,omitempty"`
	Caption  string   `json:"caption,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
}

type LinkedInVersion struct {
	Hook     string   `json:"hook,omitempty"`
	Content  string   `json:"content,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
}

// RepurposeSet is the repurpose shape; a nil platform means the model left it out.
type RepurposeSet struct {
	YouTube       *YouTubeVersion   `json:"youtube,omitempty"`
	YouTubeShorts *ShortsVersion    `json:"youtubeShorts,omitempty"`
	TikTok        *TikTokVersion    `json:"tiktok,omitempty"`
	Instagram     *InstagramVersion `json:"instagram,omitempty"`
	LinkedIn      *LinkedInVersion  `json:"linkedin,omitempty"`
}

// Variant decodes Payload into the record type matching the tag and returns a pointer
// to it (*VideoScript, *BlogPost, ..., *RepurposeSet).
func (r *Result) Variant() (any, error) {
	var v any
	if r.RequestType == RequestRepurpose {
		v = &RepurposeSet{}
	} else {
		switch r.ContentType {
		case ContentBlog:
			v = &BlogPost{}
		case ContentCarousel:
			v = &Carousel{}
		case ContentThread:
			v = &Thread{}
		case ContentLinkedIn:
			v = &LinkedInPost{}
		case ContentNewsletter:
			v = &Newsletter{}
		default:
			v = &VideoScript{}
		}
	}

	if err := json.Unmarshal(r.Payload, v); err != nil {
		return nil, fmt.Errorf("decode %s/%s result: %w", r.RequestType, r.ContentType, err)
	}
	return v, nil
}

// Repurposed decodes a repurpose result.
func (r *Result) Repurposed() (*RepurposeSet, error) {
	if r.RequestType != RequestRepurpose {
		return nil, fmt.Errorf("result is %s, not %s", r.RequestType, RequestRepurpose)
	}
	v, err := r.Variant()
	if err != nil {
		return nil, err
	}
	return v.(*RepurposeSet), nil
}
