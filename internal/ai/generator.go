package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bilgisen/repurpose/internal/logger"
	"github.com/bilgisen/repurpose/internal/metrics"
	"github.com/bilgisen/repurpose/internal/utils"
)

// ResultCache stores normalized payloads between identical requests.
type ResultCache interface {
	GetResult(ctx context.Context, key string) ([]byte, bool, error)
	SetResult(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// Generator validates a request, builds the prompt, calls the model once and
// normalizes the answer. It keeps no per-request state.
type Generator struct {
	client   ChatClient
	timeout  time.Duration
	cache    ResultCache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

type Option func(*Generator)

// WithCache enables result caching; a non-positive ttl leaves it disabled.
func WithCache(c ResultCache, ttl time.Duration) Option {
	return func(g *Generator) {
		if c != nil && ttl > 0 {
			g.cache = c
			g.cacheTTL = ttl
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// NewGenerator bounds every upstream call by timeout.
func NewGenerator(client ChatClient, timeout time.Duration, opts ...Option) (*Generator, error) {
	if client == nil {
		return nil, ErrConfig
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive", ErrConfig)
	}
	g := &Generator{client: client, timeout: timeout}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate runs one request end to end. Errors match ErrValidation, ErrRateLimited,
// ErrQuotaExceeded, ErrUpstream, ErrUpstreamTimeout or ErrParse.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (*Result, error) {
	res, err := g.generate(ctx, req)
	if err != nil {
		g.metrics.GenerationError(ErrorKind(err))
	}
	return res, err
}

func (g *Generator) generate(ctx context.Context, req GenerationRequest) (*Result, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrValidation)
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrValidation, req.Type)
	}

	log := logger.Get()
	topicLen := utf8.RuneCountInString(req.Topic)

	ct, fellBack := ResolveContentType(req.ContentType)
	if req.Type == RequestRepurpose {
		ct = ""
	} else if fellBack {
		log.Warn().
			Str("content_type", req.ContentType).
			Msg("Unrecognized content type, using video template")
		g.metrics.ContentTypeFallback()
	}

	log.Info().
		Str("type", string(req.Type)).
		Str("content_type", string(ct)).
		Int("topic_length", topicLen).
		Msg("Generating content")
	g.metrics.ObserveGeneration(string(req.Type), string(ct), topicLen)

	key := cacheKey(req.Type, ct, req.Topic)
	if payload, ok := g.lookup(ctx, key); ok {
		return &Result{RequestType: req.Type, ContentType: ct, Payload: payload}, nil
	}

	prompt := BuildPrompt(req)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	raw, err := g.client.Complete(callCtx, prompt)
	if err != nil {
		if !errors.Is(err, ErrUpstreamTimeout) && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		log.Error().
			Err(err).
			Str("type", string(req.Type)).
			Dur("duration", time.Since(start)).
			Msg("Upstream model call failed")
		return nil, err
	}

	payload, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("type", string(req.Type)).
		Str("content_type", string(ct)).
		Int("payload_size", len(payload)).
		Dur("duration", time.Since(start)).
		Msg("Successfully generated content")

	g.store(ctx, key, payload)
	return &Result{RequestType: req.Type, ContentType: ct, Payload: payload}, nil
}

func (g *Generator) lookup(ctx context.Context, key string) (json.RawMessage, bool) {
	if g.cache == nil {
		return nil, false
	}
	payload, ok, err := g.cache.GetResult(ctx, key)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("Generation cache lookup failed")
		return nil, false
	}
	g.metrics.CacheLookup(ok)
	if !ok || !json.Valid(payload) {
		return nil, false
	}
	return json.RawMessage(payload), true
}

func (g *Generator) store(ctx context.Context, key string, payload json.RawMessage) {
	if g.cache == nil {
		return
	}
	if err := g.cache.SetResult(ctx, key, payload, g.cacheTTL); err != nil {
		logger.Get().Warn().Err(err).Msg("Generation cache write failed")
	}
}

func cacheKey(rt RequestType, ct ContentType, topic string) string {
	return utils.Hash(string(rt), string(ct), topic)
}
