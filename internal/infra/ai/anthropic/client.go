package anthropic

import (
	"context"
	"errors"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	domai "github.com/bryanwahyu/inspecta/internal/domain/ai"
	"github.com/bryanwahyu/inspecta/internal/resilience"
)

const (
	defaultModel     = "claude-haiku-4-5"
	defaultMaxTokens = 4096
	providerName     = "anthropic"
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Timeout     time.Duration
	MaxAttempts int
}

// Client implements the generator port on top of the Messages API.
type Client struct {
	client    sdk.Client
	apiKey    string
	model     string
	maxTokens int64
	timeout   time.Duration
	retry     resilience.RetryConfig
}

func NewClient(cfg Config) *Client {
	// Retries are driven by resilience.DoVal, not the SDK.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxAttempts
	retry.OnRetry = resilience.RetryLogger(providerName)

	return &Client{
		client:    sdk.NewClient(opts...),
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: maxTokens,
		timeout:   cfg.Timeout,
		retry:     retry,
	}
}

func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", domai.ErrServiceUnavailable
	}
	if model == "" {
		model = c.model
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: c.maxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	}

	text, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (string, error) {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		msg, err := c.client.Messages.New(ctx, params)
		if err != nil {
			if status := statusOf(err); resilience.IsTransientHTTPStatus(status) {
				return "", resilience.NewTransientError(err, status)
			}
			return "", err
		}
		var sb strings.Builder
		for _, b := range msg.Content {
			if b.Type == "text" {
				sb.WriteString(b.Text)
			}
		}
		if sb.Len() == 0 {
			return "", eris.New("no text content in message")
		}
		return sb.String(), nil
	})
	if err != nil {
		return "", &domai.CallError{Provider: providerName, Status: statusOf(err), Err: err}
	}
	return text, nil
}

func statusOf(err error) int {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
