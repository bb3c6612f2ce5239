package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/inspecta/internal/domain/ai"
	"github.com/bryanwahyu/inspecta/internal/resilience"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 4096
	providerName     = "openai"
)

// Config for the OpenAI-compatible client. BaseURL may point at any
// compatible endpoint (Azure, Gemini's OpenAI surface, a local proxy).
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Timeout     time.Duration
	MaxAttempts int
}

type Client struct {
	api       *openai.Client
	apiKey    string
	model     string
	maxTokens int
	timeout   time.Duration
	retry     resilience.RetryConfig
}

func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxAttempts
	retry.OnRetry = resilience.RetryLogger(providerName)

	return &Client{
		api:       openai.NewClientWithConfig(oc),
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: maxTokens,
		timeout:   cfg.Timeout,
		retry:     retry,
	}
}

// Generate sends prompt as a single user message and returns the reply text.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", domai.ErrServiceUnavailable
	}
	if model == "" {
		model = c.model
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = c.maxTokens
	} else {
		req.MaxTokens = c.maxTokens
	}

	text, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (string, error) {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			if status := statusOf(err); resilience.IsTransientHTTPStatus(status) {
				return "", resilience.NewTransientError(err, status)
			}
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", eris.New("empty choices in chat completion")
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", &domai.CallError{Provider: providerName, Status: statusOf(err), Err: err}
	}
	return text, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
