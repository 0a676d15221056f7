package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/repurpose/internal/models"
	"github.com/bilgisen/repurpose/internal/repository"
)

type createConnectionRequest struct {
	Platform   string `json:"platform" validate:"required,oneof=youtube tiktok instagram linkedin"`
	WebhookURL string `json:"webhook_url" validate:"omitempty,url"`
	IsActive   bool   `json:"is_active"`
}

type updateConnectionRequest struct {
	WebhookURL *string `json:"webhook_url"`
	IsActive   *bool   `json:"is_active"`
}

// ListConnections handles GET /api/v1/connections
func (h *Handlers) ListConnections(c *fiber.Ctx) error {
	items, err := h.repo.ListConnections(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"items": items,
	})
}

// CreateConnection handles POST /api/v1/connections
func (h *Handlers) CreateConnection(c *fiber.Ctx) error {
	var req createConnectionRequest
	if err := h.validator.BindBody(c, &req); err != nil {
		return err
	}

	conn := &models.SocialConnection{
		Platform:   req.Platform,
		WebhookURL: req.WebhookURL,
		IsActive:   req.IsActive,
	}
	if err := h.repo.CreateConnection(c.UserContext(), conn); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(conn)
}

// UpdateConnection handles PATCH /api/v1/connections/:id. An empty webhook_url
// clears the URL.
func (h *Handlers) UpdateConnection(c *fiber.Ctx) error {
	var req updateConnectionRequest
	if err := h.validator.BindBody(c, &req); err != nil {
		return err
	}
	if req.WebhookURL != nil && *req.WebhookURL != "" {
		if err := h.validator.ValidateVar("webhook_url", *req.WebhookURL, "url"); err != nil {
			return err
		}
	}

	conn, err := h.repo.GetConnection(c.UserContext(), c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Connection")
	}
	if err != nil {
		return err
	}

	if req.WebhookURL != nil {
		conn.WebhookURL = *req.WebhookURL
	}
	if req.IsActive != nil {
		conn.IsActive = *req.IsActive
	}
	if err := h.repo.UpdateConnection(c.UserContext(), conn); err != nil {
		return err
	}
	return c.JSON(conn)
}

// DeleteConnection handles DELETE /api/v1/connections/:id
func (h *Handlers) DeleteConnection(c *fiber.Ctx) error {
	err := h.repo.DeleteConnection(c.UserContext(), c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "Connection")
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": "deleted",
	})
}
