package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bilgisen/repurpose/internal/cache"
	"github.com/bilgisen/repurpose/internal/metrics"
)

// stubClient returns a canned completion and counts calls.
type stubClient struct {
	raw   string
	err   error
	calls int32
	last  Prompt
	wait  time.Duration
}

func (s *stubClient) Complete(ctx context.Context, p Prompt) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	s.last = p
	if s.wait > 0 {
		select {
		case <-time.After(s.wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.raw, s.err
}

func newTestGenerator(t *testing.T, c ChatClient, opts ...Option) *Generator {
	t.Helper()
	g, err := NewGenerator(c, time.Second, opts...)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func TestNewGeneratorRequiresClient(t *testing.T) {
	if _, err := NewGenerator(nil, time.Second); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestGenerateRejectsEmptyTopic(t *testing.T) {
	stub := &stubClient{raw: `{}`}
	g := newTestGenerator(t, stub)

	for _, topic := range []string{"", "   \n"} {
		_, err := g.Generate(context.Background(), GenerationRequest{Topic: topic, Type: RequestGenerate})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("topic %q: expected ErrValidation, got %v", topic, err)
		}
	}
	if stub.calls != 0 {
		t.Fatalf("expected no upstream call, got %d", stub.calls)
	}
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	stub := &stubClient{raw: `{}`}
	g := newTestGenerator(t, stub)

	_, err := g.Generate(context.Background(), GenerationRequest{Topic: "x", Type: "summarize"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatal("expected no upstream call")
	}
}

func TestGenerateReturnsPayloadUnchanged(t *testing.T) {
	payload := `{"title":"T","content":"body text","keyPoints":["a","b"]}`
	stub := &stubClient{raw: payload}
	g := newTestGenerator(t, stub)

	res, err := g.Generate(context.Background(), GenerationRequest{
		Topic: "AI resume tips", Type: RequestGenerate, ContentType: "blog",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(res.Payload) != payload {
		t.Errorf("payload changed: %s", res.Payload)
	}
	if res.ContentType != ContentBlog || res.RequestType != RequestGenerate {
		t.Errorf("unexpected tag %s/%s", res.RequestType, res.ContentType)
	}
	if stub.last != BuildPrompt(GenerationRequest{Topic: "AI resume tips", Type: RequestGenerate, ContentType: "blog"}) {
		t.Error("upstream received an unexpected prompt")
	}
}

func TestGenerateFallsBackToVideo(t *testing.T) {
	m := metrics.New()
	g := newTestGenerator(t, &stubClient{raw: `{}`}, WithMetrics(m))

	res, err := g.Generate(context.Background(), GenerationRequest{Topic: "x", Type: RequestGenerate, ContentType: "podcast"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.ContentType != ContentVideo {
		t.Errorf("expected video fallback, got %s", res.ContentType)
	}
}

func TestGeneratePropagatesParseError(t *testing.T) {
	g := newTestGenerator(t, &stubClient{raw: `{"title": "x"`})

	_, err := g.Generate(context.Background(), GenerationRequest{Topic: "x", Type: RequestGenerate})
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestGenerateTimeout(t *testing.T) {
	stub := &stubClient{raw: `{}`, wait: time.Second}
	g, err := NewGenerator(stub, 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	_, err = g.Generate(context.Background(), GenerationRequest{Topic: "x", Type: RequestGenerate})
	if !errors.Is(err, ErrUpstreamTimeout) {
		t.Fatalf("expected ErrUpstreamTimeout, got %v", err)
	}
}

func TestGenerateUsesCache(t *testing.T) {
	stub := &stubClient{raw: "```json\n{\"a\":1}\n```"}
	c := cache.NewMockRedisClient()
	g := newTestGenerator(t, stub, WithCache(c, time.Minute))
	req := GenerationRequest{Topic: "x", Type: RequestRepurpose}

	for i := 0; i < 3; i++ {
		res, err := g.Generate(context.Background(), req)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if string(res.Payload) != `{"a":1}` {
			t.Fatalf("unexpected payload %s", res.Payload)
		}
	}
	if stub.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", stub.calls)
	}
}

func TestGenerateDoesNotCacheErrors(t *testing.T) {
	stub := &stubClient{raw: "not json"}
	c := cache.NewMockRedisClient()
	g := newTestGenerator(t, stub, WithCache(c, time.Minute))
	req := GenerationRequest{Topic: "x", Type: RequestGenerate}

	for i := 0; i < 2; i++ {
		if _, err := g.Generate(context.Background(), req); !errors.Is(err, ErrParse) {
			t.Fatalf("expected ErrParse, got %v", err)
		}
	}
	if stub.calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", stub.calls)
	}
}

func TestGenerateThroughGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "google/gemini-2.5-flash" || len(req.Messages) != 2 {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "Sure! ```json\n{\"a\":1}\n```"}}},
		})
	}))
	defer srv.Close()

	client, err := NewGatewayClient("secret", "google/gemini-2.5-flash", srv.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	g := newTestGenerator(t, client)

	res, err := g.Generate(context.Background(), GenerationRequest{Topic: "x", Type: RequestGenerate})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(res.Payload) != `{"a":1}` {
		t.Errorf("unexpected payload %s", res.Payload)
	}
}
