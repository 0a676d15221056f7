package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(body).Decode(&m); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return m
}

func TestCORSPreflight(t *testing.T) {
	app := newApp()
	app.Use(CORS())
	app.Post("/generate", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodOptions, "/generate", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("preflight status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Errorf("preflight body should be empty, got %q", body)
	}
	if got := resp.Header.Get(fiber.HeaderAccessControlAllowOrigin); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
	if got := resp.Header.Get(fiber.HeaderAccessControlAllowHeaders); !strings.Contains(got, "x-client-info") {
		t.Errorf("allow headers = %q", got)
	}

	resp, _ = app.Test(httptest.NewRequest(fiber.MethodPost, "/generate", nil))
	if got := resp.Header.Get(fiber.HeaderAccessControlAllowOrigin); got != "*" {
		t.Errorf("allow origin on POST = %q", got)
	}
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name     string
		adminKey string
		header   string
		want     int
	}{
		{"valid key", "secret", "secret", fiber.StatusOK},
		{"bearer prefix", "secret", "Bearer secret", fiber.StatusOK},
		{"missing key", "secret", "", fiber.StatusUnauthorized},
		{"wrong key", "secret", "nope", fiber.StatusForbidden},
		{"no admin key configured", "", "anything", fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Get("/admin", AdminOnly(tt.adminKey), func(c *fiber.Ctx) error {
				return c.SendString("ok")
			})
			req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

type createBody struct {
	Platform   string `json:"platform" validate:"required,oneof=youtube tiktok"`
	WebhookURL string `json:"webhook_url" validate:"omitempty,url"`
}

func TestBindBody(t *testing.T) {
	v := NewValidator()
	app := newApp()
	app.Post("/c", func(c *fiber.Ctx) error {
		var body createBody
		if err := v.BindBody(c, &body); err != nil {
			return err
		}
		return c.JSON(body)
	})

	send := func(payload string) (map[string]any, int) {
		req := httptest.NewRequest(fiber.MethodPost, "/c", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		return decode(t, resp.Body), resp.StatusCode
	}

	body, status := send(`{"platform":"myspace","webhook_url":"not a url"}`)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", status)
	}
	fields, _ := body["fields"].(map[string]any)
	if fields["platform"] != "oneof" || fields["webhook_url"] != "url" {
		t.Errorf("unexpected fields %v", body["fields"])
	}

	body, status = send(`{"platform":`)
	if status != fiber.StatusBadRequest || body["error"] != "Invalid request body" {
		t.Errorf("unexpected response %d %v", status, body)
	}

	body, status = send(`{"platform":"tiktok"}`)
	if status != fiber.StatusOK || body["platform"] != "tiktok" {
		t.Errorf("unexpected response %d %v", status, body)
	}
}

func TestErrorHandler(t *testing.T) {
	app := newApp()
	app.Get("/boom", func(c *fiber.Ctx) error { return io.ErrUnexpectedEOF })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	resp, _ := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if body := decode(t, resp.Body); body["error"] != "Internal Server Error" {
		t.Errorf("unexpected body %v", body)
	}

	resp, _ = app.Test(httptest.NewRequest(fiber.MethodGet, "/teapot", nil))
	if resp.StatusCode != fiber.StatusTeapot {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if body := decode(t, resp.Body); body["error"] != "short and stout" {
		t.Errorf("unexpected body %v", body)
	}
}
