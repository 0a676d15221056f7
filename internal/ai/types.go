package ai

import "strings"

// RequestType selects between first-draft generation and multi-platform repurposing.
type RequestType string

const (
	RequestGenerate  RequestType = "generate"
	RequestRepurpose RequestType = "repurpose"
)

// Valid reports whether t is one of the supported request types.
func (t RequestType) Valid() bool {
	return t == RequestGenerate || t == RequestRepurpose
}

// ContentType selects the generate template.
type ContentType string

const (
	ContentVideo      ContentType = "video"
	ContentBlog       ContentType = "blog"
	ContentCarousel   ContentType = "carousel"
	ContentThread     ContentType = "thread"
	ContentLinkedIn   ContentType = "linkedin"
	ContentNewsletter ContentType = "newsletter"
)

// ContentTypes lists every generate template in display order.
var ContentTypes = []ContentType{
	ContentVideo,
	ContentBlog,
	ContentCarousel,
	ContentThread,
	ContentLinkedIn,
	ContentNewsletter,
}

// ResolveContentType maps a caller-supplied selector onto a known content type.
// Empty and unrecognized values resolve to video; fellBack is true only for
// non-empty values that were not recognized.
func ResolveContentType(raw string) (ct ContentType, fellBack bool) {
	v := ContentType(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return ContentVideo, false
	}
	if _, ok := generateTemplates[v]; ok {
		return v, false
	}
	return ContentVideo, true
}

// GenerationRequest is the inbound generation payload.
type GenerationRequest struct {
	Topic       string      `json:"topic"`
	Type        RequestType `json:"type"`
	ContentType string      `json:"contentType,omitempty"`
}

// Prompt is the two-message conversation sent upstream.
type Prompt struct {
	System string
	User   string
}
