package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/repurpose/internal/ai"
	"github.com/bilgisen/repurpose/internal/cache"
	"github.com/bilgisen/repurpose/internal/config"
	"github.com/bilgisen/repurpose/internal/logger"
	"github.com/bilgisen/repurpose/internal/metrics"
	"github.com/bilgisen/repurpose/internal/middleware"
	"github.com/bilgisen/repurpose/internal/models"
	"github.com/bilgisen/repurpose/internal/publish"
	"github.com/bilgisen/repurpose/internal/repository"
	"github.com/bilgisen/repurpose/internal/storage"
)

const version = "1.0.0"

// Error bodies of the generation endpoint
const (
	msgRateLimited   = "Rate limit exceeded. Please try again in a moment."
	msgQuotaExceeded = "AI credits depleted. Please add credits to continue."
	msgNotConfigured = "AI service is not configured"
	msgTimeout       = "AI gateway timed out"
	msgParse         = "Failed to parse AI response"
)

// Deps are the collaborators of the HTTP layer. Cache, Archive, Dispatcher and
// Metrics are optional.
type Deps struct {
	Config     *config.Config
	Generator  *ai.Generator
	Repo       repository.Repository
	Cache      cache.RedisInterface
	Archive    storage.Archive
	Dispatcher *publish.Dispatcher
	Metrics    *metrics.Metrics
}

type Handlers struct {
	config     *config.Config
	generator  *ai.Generator
	repo       repository.Repository
	cache      cache.RedisInterface
	archive    storage.Archive
	dispatcher *publish.Dispatcher
	metrics    *metrics.Metrics
	validator  *middleware.Validator
	now        func() time.Time
}

func NewHandlers(d Deps) *Handlers {
	cfg := d.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Handlers{
		config:     cfg,
		generator:  d.Generator,
		repo:       d.Repo,
		cache:      d.Cache,
		archive:    d.Archive,
		dispatcher: d.Dispatcher,
		metrics:    d.Metrics,
		validator:  middleware.NewValidator(),
		now:        time.Now,
	}
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
		"time":    h.now().UTC().Format(time.RFC3339),
	})
}

// Generate handles POST /api/v1/generate. The body is
// {"topic": "...", "type": "generate"|"repurpose", "contentType": "..."} and a
// successful answer is the model's JSON payload as-is.
func (h *Handlers) Generate(c *fiber.Ctx) error {
	var req ai.GenerationRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if h.generator == nil {
		return generationError(c, ai.ErrConfig)
	}

	res, err := h.generator.Generate(c.UserContext(), req)
	if err != nil {
		return generationError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(res.Payload)
}

// generationError answers err with the status and message of its kind.
func generationError(c *fiber.Ctx, err error) error {
	status, msg := fiber.StatusInternalServerError, "Internal Server Error"

	var upErr *ai.UpstreamError
	switch {
	case errors.Is(err, ai.ErrValidation):
		status = fiber.StatusBadRequest
		msg = strings.TrimPrefix(err.Error(), ai.ErrValidation.Error()+": ")
	case errors.Is(err, ai.ErrConfig):
		msg = msgNotConfigured
	case errors.Is(err, ai.ErrRateLimited):
		status, msg = fiber.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, ai.ErrQuotaExceeded):
		status, msg = fiber.StatusPaymentRequired, msgQuotaExceeded
	case errors.Is(err, ai.ErrUpstreamTimeout):
		status, msg = fiber.StatusGatewayTimeout, msgTimeout
	case errors.As(err, &upErr) && upErr.StatusCode != 0:
		msg = fmt.Sprintf("%s: %d", ai.ErrUpstream, upErr.StatusCode)
	case errors.Is(err, ai.ErrUpstream):
		msg = ai.ErrUpstream.Error()
	case errors.Is(err, ai.ErrParse):
		msg = msgParse
	}

	if status >= 500 {
		logger.Get().Error().
			Err(err).
			Str("kind", ai.ErrorKind(err)).
			Int("status", status).
			Msg("Generation request failed")
	}

	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// archiveSnapshot writes a snapshot of rec; failures are logged only.
func (h *Handlers) archiveSnapshot(c *fiber.Ctx, rec *models.Content) {
	if h.archive == nil {
		return
	}
	if err := h.archive.Put(c.UserContext(), rec); err != nil {
		logger.Get().Error().
			Err(err).
			Str("id", rec.ID).
			Msg("Error archiving content")
	}
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": what + " not found",
	})
}
