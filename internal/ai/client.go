// Package ai implements the Anthropic-backed model client used by the
// review engine, quality scorer, and goal decomposer. It maps abstract
// model tiers onto concrete Claude models and normalizes responses into
// the domain contract.
package ai

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/hiveworks/hive/internal/clock"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/ctxutil"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/errors"
)

// defaultTimeout bounds a model call when the request does not set one.
const defaultTimeout = 2 * time.Minute

// defaultMaxTokens bounds the response when the request does not set one.
const defaultMaxTokens = 4096

// tierModels maps abstract tiers to the concrete Claude model serving
// each one.
var tierModels = map[constants.ModelTier]anthropic.Model{
	constants.TierOpus:   anthropic.ModelClaudeOpus4_1_20250805,
	constants.TierSonnet: anthropic.ModelClaudeSonnet4_20250514,
	constants.TierHaiku:  anthropic.ModelClaude3_5Haiku20241022,
}

// Client wraps the Anthropic SDK client with tier resolution and token
// tracking. It implements domain.ModelClient.
type Client struct {
	inner     anthropic.Client
	clk       clock.Clock
	log       zerolog.Logger
	tracker   *TokenTracker
	timeout   time.Duration
	maxTokens int64
}

// Config contains configuration for creating a new Client.
type Config struct {
	// APIKey is the Anthropic API key. If empty, uses the
	// ANTHROPIC_API_KEY env var.
	APIKey string

	// Timeout bounds calls whose request sets none. Zero means two
	// minutes.
	Timeout time.Duration

	// MaxTokens bounds responses whose request sets none. Zero means
	// 4096.
	MaxTokens int

	// Clock overrides the clock used for call timing. Nil means the
	// system clock.
	Clock clock.Clock

	// Logger receives per-call debug logs. Zero value disables logging.
	Logger zerolog.Logger
}

// NewClient creates a new Anthropic-backed model client.
func NewClient(cfg Config) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "ANTHROPIC_API_KEY is not set")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		inner:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		clk:       clk,
		log:       cfg.Logger,
		tracker:   NewTokenTracker(),
		timeout:   timeout,
		maxTokens: maxTokens,
	}, nil
}

// Tracker returns the token tracker for this client.
func (c *Client) Tracker() *TokenTracker {
	return c.tracker
}

// CreateMessage performs one model call and returns the text response
// with usage accounting.
func (c *Client) CreateMessage(ctx context.Context, req domain.MessageRequest) (*domain.MessageResponse, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	model, ok := tierModels[req.Tier]
	if !ok {
		return nil, errors.Wrapf(errors.ErrModelInvocation, "unknown model tier %q", req.Tier)
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	start := c.clk.Now()
	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModelInvocation, "model call failed: %v", err)
	}

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var sb strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(variant.Text)
		}
	}

	out := &domain.MessageResponse{
		Content:      sb.String(),
		Model:        string(resp.Model),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		StopReason:   string(resp.StopReason),
		Duration:     c.clk.Now().Sub(start),
	}

	c.log.Debug().
		Str("tier", string(req.Tier)).
		Str("model", out.Model).
		Int64("input_tokens", out.InputTokens).
		Int64("output_tokens", out.OutputTokens).
		Dur("duration", out.Duration).
		Msg("model call completed")

	return out, nil
}

// TokenTracker tracks token usage across model calls.
type TokenTracker struct {
	mu        sync.Mutex
	inputTok  int64
	outputTok int64
	calls     int
}

// NewTokenTracker creates a new token tracker.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{}
}

// Add records token usage from a model call.
func (t *TokenTracker) Add(input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTok += input
	t.outputTok += output
	t.calls++
}

// Total returns the total input and output tokens tracked.
func (t *TokenTracker) Total() (input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inputTok, t.outputTok
}

// Calls returns the number of model calls made.
func (t *TokenTracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Reset clears all tracked token usage.
func (t *TokenTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTok = 0
	t.outputTok = 0
	t.calls = 0
}
