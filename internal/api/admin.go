package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/repurpose/internal/logger"
	"github.com/bilgisen/repurpose/internal/storage"
)

// Dispatch handles POST /api/v1/admin/dispatch by running one dispatch pass.
func (h *Handlers) Dispatch(c *fiber.Ctx) error {
	if h.dispatcher == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Dispatcher is not configured",
		})
	}

	logger.Get().Info().
		Str("ip", c.IP()).
		Msg("Received dispatch request")

	summary, err := h.dispatcher.DispatchDue(c.UserContext(), h.now())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Dispatch pass failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Dispatch failed",
		})
	}
	return c.JSON(summary)
}

// GetArchived handles GET /api/v1/admin/archive/:id
func (h *Handlers) GetArchived(c *fiber.Ctx) error {
	if h.archive == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Archive is disabled",
		})
	}

	rec, err := h.archive.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return notFound(c, "Archived content")
	}
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

// ClearCache handles DELETE /api/v1/admin/cache
func (h *Handlers) ClearCache(c *fiber.Ctx) error {
	if h.cache == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Cache is not configured",
		})
	}
	if err := h.cache.ClearResults(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": "cleared",
	})
}
