package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/bilgisen/repurpose/internal/ai"
	"github.com/bilgisen/repurpose/internal/models"
)

// Output formats
const (
	FormatText = "text"
	FormatHTML = "html"
)

var (
	ErrVariantNotFound = errors.New("variant not found")
	ErrUnknownFormat   = errors.New("unknown format")
)

var markdown = goldmark.New()

// Copy returns the copy-ready text of one variant of c in the requested format.
func Copy(c *models.Content, variant, format string) (string, error) {
	text, err := Text(c, variant)
	if err != nil {
		return "", err
	}
	switch format {
	case FormatText, "":
		return text, nil
	case FormatHTML:
		return HTML(text)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// HTML renders Markdown text. Raw HTML in the input is dropped.
func HTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// Text assembles the stored document of a variant into reading order.
func Text(c *models.Content, variant string) (string, error) {
	if variant == "" || variant == models.VariantOriginal {
		if strings.TrimSpace(c.OriginalScript) == "" {
			return "", ErrVariantNotFound
		}
		return c.OriginalScript, nil
	}

	raw, ok := c.Variant(variant)
	if !ok {
		return "", ErrVariantNotFound
	}

	var b builder
	switch variant {
	case models.VariantYouTube:
		var v ai.YouTubeVersion
		if err := decode(raw, &v); err != nil {
			return "", err
		}
		b.heading(v.Title)
		b.para(v.Description, v.Script)
		b.tags(v.Hashtags)
	case models.VariantYouTubeShorts:
		var v ai.ShortsVersion
		if err := decode(raw, &v); err != nil {
			return "", err
		}
		b.heading(v.Title)
		b.para(v.Hook, v.Script)
		b.tags(v.Hashtags)
	case models.VariantTikTok:
		var v ai.TikTokVersion
		if err := decode(raw, &v); err != nil {
			return "", err
		}
		b.para(v.Hook, v.Script)
		b.labeled("Trend", v.TrendSuggestion)
		b.tags(v.Hashtags)
	case models.VariantInstagram:
		var v ai.InstagramVersion
		if err := decode(raw, &v); err != nil {
			return "", err
		}
		b.para(v.Hook, v.Script, v.Caption)
		b.tags(v.Hashtags)
	case models.VariantLinkedIn:
		var v ai.LinkedInPost
		if err := decode(raw, &v); err != nil {
			return "", err
		}
		b.para(v.Hook, v.Content)
		b.list(v.KeyPoints)
		b.para(v.CTA)
		b.tags(v.Hashtags)
	case models.VariantBlog:
		var v ai.BlogPost
		if err := decode(raw, &v); err != nil {
			return "", err
		}
		b.heading(v.Title)
		b.para(v.Content)
		b.list(v.KeyPoints)
		b.para(v.CTA)
		b.tags(v.Tags)
	case models.VariantCarousel:
		var v ai.Carousel
		if err := decode(raw, &v); err != nil {
			return "", err
		}
		b.heading(v.Title)
		for i, s := range v.Slides {
			b.subheading(fmt.Sprintf("Slide %d: %s", i+1, s.Heading))
			b.para(s.Body)
			b.labeled("Visual", s.Visual)
		}
		b.para(v.Caption)
		b.tags(v.Hashtags)
	case models.VariantThread:
		var v ai.Thread
		if err := decode(raw, &v); err != nil {
			return "", err
		}
		b.para(v.Hook)
		for i, tweet := range v.Tweets {
			b.para(fmt.Sprintf("%d/ %s", i+1, tweet))
		}
		b.para(v.CTA)
		b.tags(v.Hashtags)
	case models.VariantNewsletter:
		var v ai.Newsletter
		if err := decode(raw, &v); err != nil {
			return "", err
		}
		b.heading(v.Subject)
		b.para(v.PreviewText, v.Greeting)
		for _, s := range v.Sections {
			b.subheading(s.Heading)
			b.para(s.Body)
		}
		b.para(v.CTA, v.SignOff)
	default:
		return "", ErrVariantNotFound
	}

	if b.empty() {
		return "", ErrVariantNotFound
	}
	return b.String(), nil
}

func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode variant: %w", err)
	}
	return nil
}

// builder joins non-empty blocks with blank lines.
type builder struct {
	blocks []string
}

func (b *builder) add(s string) {
	if s = strings.TrimSpace(s); s != "" {
		b.blocks = append(b.blocks, s)
	}
}

func (b *builder) heading(s string) {
	if strings.TrimSpace(s) != "" {
		b.add("# " + s)
	}
}

func (b *builder) subheading(s string) {
	if strings.TrimSpace(s) != "" {
		b.add("## " + s)
	}
}

func (b *builder) para(parts ...string) {
	for _, p := range parts {
		b.add(p)
	}
}

func (b *builder) labeled(label, s string) {
	if strings.TrimSpace(s) != "" {
		b.add(label + ": " + s)
	}
}

func (b *builder) list(items []string) {
	var lines []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			lines = append(lines, "- "+it)
		}
	}
	b.add(strings.Join(lines, "\n"))
}

func (b *builder) tags(tags []string) {
	b.add(strings.Join(tags, " "))
}

func (b *builder) empty() bool {
	return len(b.blocks) == 0
}

func (b *builder) String() string {
	return strings.Join(b.blocks, "\n\n")
}
