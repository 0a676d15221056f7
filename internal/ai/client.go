package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ChatClient sends a system+user conversation upstream and returns the raw completion text.
// Implementations report non-2xx answers as *UpstreamError and deadlines as ErrUpstreamTimeout.
type ChatClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// GatewayClient talks to an OpenAI-compatible /chat/completions endpoint.
type GatewayClient struct {
	client  *resty.Client
	apiKey  string
	model   string
	baseURL string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewGatewayClient returns a client for baseURL (e.g. https://ai.gateway.lovable.dev/v1).
func NewGatewayClient(apiKey, model, baseURL string, timeout time.Duration) (*GatewayClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrConfig)
	}
	return &GatewayClient{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (g *GatewayClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	req := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
	}

	var out chatResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(g.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		ForceContentType("application/json").
		Post(g.baseURL + "/chat/completions")
	if err != nil {
		if isDecodeError(err) && resp != nil && resp.IsSuccess() {
			return "", &ParseError{Size: len(resp.Body()), Err: err}
		}
		if isTimeout(ctx, err) {
			return "", fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return "", &UpstreamError{Kind: ErrUpstream, Body: err.Error()}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return "", newStatusError(resp.StatusCode(), resp.String())
	}

	if len(out.Choices) == 0 {
		return "", &ParseError{Size: len(resp.Body()), Err: errors.New("no choices in completion")}
	}
	return out.Choices[0].Message.Content, nil
}

// isDecodeError reports whether err came from decoding a completion body.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// isTimeout reports whether err stems from a deadline rather than a refused or broken call.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
