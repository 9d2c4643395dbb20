package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/aishell/internal/ai"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-4o-mini"
	DefaultTimeout = 60 * time.Second

	DefaultSystemPrompt = `You are an AI shell assistant running inside the user's terminal.

Answer every request in exactly this format:

COMMAND: <one shell command that accomplishes the request, or leave empty if none is needed>
EXPLANATION: <short explanation of the command or a direct answer to the question>
SAFE: <yes if the command only reads state and cannot cause harm, otherwise no followed by the reason>

Rules:
1. Propose at most one command, on a single line, without markdown fences
2. Do not use the words COMMAND:, EXPLANATION: or SAFE: anywhere else
3. Mark anything that deletes, overwrites, installs, or changes permissions as SAFE: no`
)

// ErrNoAPIKey is returned when a query is made without a credential.
var ErrNoAPIKey = errors.New("no API key configured")

// baseURLs maps provider names accepted in config to their OpenAI-compatible endpoints.
var baseURLs = map[string]string{
	"openrouter": DefaultBaseURL,
	"openai":     "https://api.openai.com/v1",
	"glm":        "https://open.bigmodel.cn/api/paas/v4",
	"zhipu":      "https://open.bigmodel.cn/api/paas/v4",
}

// BaseURLFor returns the endpoint for a provider name, or "" if unknown.
func BaseURLFor(provider string) string {
	return baseURLs[strings.ToLower(provider)]
}

// Client implements ai.Provider for OpenRouter and other OpenAI-compatible APIs
type Client struct {
	baseURL      string
	systemPrompt string
	timeout      time.Duration
	httpClient   *http.Client
	logger       *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithSystemPrompt overrides the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		if strings.TrimSpace(prompt) != "" {
			c.systemPrompt = prompt
		}
	}
}

// WithTimeout bounds every query.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new client
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		systemPrompt: DefaultSystemPrompt,
		timeout:      DefaultTimeout,
		httpClient:   &http.Client{},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query sends one prompt and returns the reply text and the model that answered.
func (c *Client) Query(ctx context.Context, req ai.Request) (*ai.Reply, error) {
	if req.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg := openai.DefaultConfig(req.APIKey)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(cfg)

	started := time.Now()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		c.logger.Warn("query failed",
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ai.ErrNoChoices
	}

	used := resp.Model
	if used == "" {
		used = model
	}

	c.logger.Debug("query answered",
		zap.String("requested", model),
		zap.String("used", used),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return &ai.Reply{
		Text:  resp.Choices[0].Message.Content,
		Model: used,
	}, nil
}
