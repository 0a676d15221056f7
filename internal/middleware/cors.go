package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig defines the config for the CORS middleware
type CORSConfig struct {
	AllowOrigin  string
	AllowHeaders []string
	AllowMethods []string
}

// DefaultCORSConfig allows any origin with the headers browser clients send.
var DefaultCORSConfig = CORSConfig{
	AllowOrigin:  "*",
	AllowHeaders: []string{"authorization", "x-client-info", "apikey", "content-type", "x-api-key"},
	AllowMethods: []string{
		fiber.MethodGet,
		fiber.MethodPost,
		fiber.MethodPatch,
		fiber.MethodDelete,
		fiber.MethodOptions,
	},
}

// CORS sets the allow headers on every response and answers preflight requests
// with an empty 200.
func CORS(config ...CORSConfig) fiber.Handler {
	cfg := DefaultCORSConfig
	if len(config) > 0 {
		cfg = config[0]
		if cfg.AllowOrigin == "" {
			cfg.AllowOrigin = DefaultCORSConfig.AllowOrigin
		}
		if len(cfg.AllowHeaders) == 0 {
			cfg.AllowHeaders = DefaultCORSConfig.AllowHeaders
		}
		if len(cfg.AllowMethods) == 0 {
			cfg.AllowMethods = DefaultCORSConfig.AllowMethods
		}
	}

	headers := strings.Join(cfg.AllowHeaders, ", ")
	methods := strings.Join(cfg.AllowMethods, ", ")

	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, cfg.AllowOrigin)
		c.Set(fiber.HeaderAccessControlAllowHeaders, headers)

		if c.Method() == fiber.MethodOptions {
			c.Set(fiber.HeaderAccessControlAllowMethods, methods)
			return c.Status(fiber.StatusOK).Send(nil)
		}
		return c.Next()
	}
}
