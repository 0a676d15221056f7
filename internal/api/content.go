package api

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/repurpose/internal/ai"
	"github.com/bilgisen/repurpose/internal/calendar"
	"github.com/bilgisen/repurpose/internal/logger"
	"github.com/bilgisen/repurpose/internal/middleware"
	"github.com/bilgisen/repurpose/internal/models"
	"github.com/bilgisen/repurpose/internal/render"
	"github.com/bilgisen/repurpose/internal/repository"
)

type saveContentRequest struct {
	Topic          string                     `json:"topic" validate:"max=500"`
	ContentType    string                     `json:"content_type" validate:"omitempty,oneof=video blog carousel thread linkedin newsletter"`
	OriginalScript string                     `json:"original_script" validate:"required"`
	Status         string                     `json:"status" validate:"omitempty,oneof=draft ready"`
	Variants       map[string]json.RawMessage `json:"variants"`
}

type listContentQuery struct {
	Page     int `query:"page" json:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" json:"page_size" validate:"omitempty,min=1,max=100"`
}

type scheduleRequest struct {
	ScheduledFor *time.Time `json:"scheduled_for" validate:"required"`
	Platform     string     `json:"platform" validate:"required,oneof=youtube tiktok instagram linkedin"`
}

// SaveContent handles POST /api/v1/content
func (h *Handlers) SaveContent(c *fiber.Ctx) error {
	var req saveContentRequest
	if err := h.validator.BindBody(c, &req); err != nil {
		return err
	}

	rec := &models.Content{
		Topic:          strings.TrimSpace(req.Topic),
		ContentType:    req.ContentType,
		OriginalScript: req.OriginalScript,
		Status:         req.Status,
	}
	if rec.Topic == "" {
		rec.Topic = "Untitled"
	}
	if rec.ContentType == "" {
		rec.ContentType = string(ai.ContentVideo)
	}
	if rec.Status == "" {
		rec.Status = models.StatusReady
	}
	for name, raw := range req.Variants {
		if name == models.VariantOriginal || !rec.SetVariant(name, raw) {
			return &middleware.ValidationError{Fields: map[string]string{"variants." + name: "unknown"}}
		}
	}

	if err := h.repo.CreateContent(c.UserContext(), rec); err != nil {
		return err
	}
	h.archiveSnapshot(c, rec)

	logger.Get().Info().
		Str("id", rec.ID).
		Str("content_type", rec.ContentType).
		Msg("Saved content")

	return c.Status(fiber.StatusCreated).JSON(rec)
}

// ListContent handles GET /api/v1/content
func (h *Handlers) ListContent(c *fiber.Ctx) error {
	q := listContentQuery{Page: 1, PageSize: 20}
	if err := h.validator.BindQuery(c, &q); err != nil {
		return err
	}
	page, pageSize := q.Page, q.PageSize
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}

	items, total, err := h.repo.ListContent(c.UserContext(), page, pageSize)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error listing content")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list content",
		})
	}

	return c.JSON(fiber.Map{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
		"items":     items,
	})
}

// GetContent handles GET /api/v1/content/:id
func (h *Handlers) GetContent(c *fiber.Ctx) error {
	rec, err := h.loadContent(c)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(c, "Content")
	}
	return c.JSON(rec)
}

// DeleteContent handles DELETE /api/v1/content/:id. A snapshot is archived first.
func (h *Handlers) DeleteContent(c *fiber.Ctx) error {
	rec, err := h.loadContent(c)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(c, "Content")
	}

	h.archiveSnapshot(c, rec)
	if err := h.repo.DeleteContent(c.UserContext(), rec.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Content")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"status":  "deleted",
		"message": "Content deleted successfully",
	})
}

// ScheduleContent handles POST /api/v1/content/:id/schedule
func (h *Handlers) ScheduleContent(c *fiber.Ctx) error {
	var req scheduleRequest
	if err := h.validator.BindBody(c, &req); err != nil {
		return err
	}

	rec, err := h.loadContent(c)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(c, "Content")
	}

	rec.Schedule(*req.ScheduledFor, req.Platform)
	return h.saveUpdate(c, rec)
}

// UnscheduleContent handles DELETE /api/v1/content/:id/schedule
func (h *Handlers) UnscheduleContent(c *fiber.Ctx) error {
	rec, err := h.loadContent(c)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(c, "Content")
	}

	rec.Unschedule()
	return h.saveUpdate(c, rec)
}

// RepurposeContent handles POST /api/v1/content/:id/repurpose. The original script
// is sent through the repurpose template and every returned platform version is
// written to its variant column; edits made meanwhile are kept.
func (h *Handlers) RepurposeContent(c *fiber.Ctx) error {
	rec, err := h.loadContent(c)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(c, "Content")
	}
	if h.generator == nil {
		return generationError(c, ai.ErrConfig)
	}

	res, err := h.generator.Generate(c.UserContext(), ai.GenerationRequest{
		Topic: rec.OriginalScript,
		Type:  ai.RequestRepurpose,
	})
	if err != nil {
		return generationError(c, err)
	}

	set, err := res.Repurposed()
	if err != nil {
		return generationError(c, &ai.ParseError{Size: len(res.Payload), Err: err})
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(res.Payload, &raw); err != nil {
		return generationError(c, &ai.ParseError{Size: len(res.Payload), Err: err})
	}
	present := map[string]bool{
		models.VariantYouTube:       set.YouTube != nil,
		models.VariantYouTubeShorts: set.YouTubeShorts != nil,
		models.VariantTikTok:        set.TikTok != nil,
		models.VariantInstagram:     set.Instagram != nil,
		models.VariantLinkedIn:      set.LinkedIn != nil,
	}
	variants := make(map[string]json.RawMessage, len(present))
	for name, ok := range present {
		if ok {
			variants[name] = raw[name]
		}
	}

	updated, err := h.repo.UpdateVariants(c.UserContext(), rec.ID, variants)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Content")
		}
		return err
	}
	h.archiveSnapshot(c, updated)
	return c.JSON(updated)
}

// CopyContent handles GET /api/v1/content/:id/copy?variant=&format=text|html
func (h *Handlers) CopyContent(c *fiber.Ctx) error {
	rec, err := h.loadContent(c)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(c, "Content")
	}

	format := c.Query("format", render.FormatText)
	out, err := render.Copy(rec, c.Query("variant", models.VariantOriginal), format)
	switch {
	case errors.Is(err, render.ErrVariantNotFound):
		return notFound(c, "Variant")
	case errors.Is(err, render.ErrUnknownFormat):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "format must be text or html",
		})
	case err != nil:
		return err
	}

	if format == render.FormatHTML {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	}
	return c.SendString(out)
}

// ListPosts handles GET /api/v1/content/:id/posts
func (h *Handlers) ListPosts(c *fiber.Ctx) error {
	rec, err := h.loadContent(c)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(c, "Content")
	}

	entries, err := h.repo.ListPostEntries(c.UserContext(), rec.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"items": entries,
	})
}

// Calendar handles GET /api/v1/calendar?month=YYYY-MM
func (h *Handlers) Calendar(c *fiber.Ctx) error {
	month, err := calendar.ParseMonth(c.Query("month"), h.now())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	from, to := calendar.Bounds(month)
	scheduled, err := h.repo.ListScheduled(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	unscheduled, err := h.repo.ListUnscheduled(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(calendar.Build(month, scheduled, unscheduled))
}

// loadContent returns the record named by the :id param, or nil when it does not exist.
func (h *Handlers) loadContent(c *fiber.Ctx) (*models.Content, error) {
	rec, err := h.repo.GetContent(c.UserContext(), c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

func (h *Handlers) saveUpdate(c *fiber.Ctx, rec *models.Content) error {
	if err := h.repo.UpdateContent(c.UserContext(), rec); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Content")
		}
		return err
	}
	h.archiveSnapshot(c, rec)
	return c.JSON(rec)
}
