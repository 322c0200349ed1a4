package correctness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"codecoach/internal/recommend"
	"codecoach/internal/slogutil"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// OpenAIConfig configures an OpenAIChecker.
type OpenAIConfig struct {
	APIKey        string
	Model         string
	BaseURL       string
	RatePerMinute int
	Logger        *slog.Logger
}

// OpenAIChecker asks a chat-completion model for a verdict. Calls are rate
// limited and guarded by a circuit breaker.
type OpenAIChecker struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*recommend.Verdict]
	logger  *slog.Logger
}

// NewOpenAIChecker creates a checker. An empty API key is an error.
func NewOpenAIChecker(cfg OpenAIConfig) (*OpenAIChecker, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 20
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	c := &OpenAIChecker{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60), 1),
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[*recommend.Verdict](gobreaker.Settings{
		Name:        "correctness-openai",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// cancellations do not count against the provider
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return c, nil
}

// Check implements Checker.
func (c *OpenAIChecker) Check(ctx context.Context, code, language, expectedBehavior string) (*recommend.Verdict, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return c.breaker.Execute(func() (*recommend.Verdict, error) {
		req := openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: buildPrompt(code, language, expectedBehavior)},
			},
			Temperature: 0,
		}
		start := time.Now()
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			c.logger.Debug("Correctness request failed", "model", c.model, "error", err.Error())
			return nil, fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("chat completion returned no choices")
		}
		c.logger.Debug("Correctness response received",
			"model", c.model,
			"finish_reason", string(resp.Choices[0].FinishReason),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return ParseVerdict(resp.Choices[0].Message.Content)
	})
}

const systemPrompt = "You are an expert code reviewer and debugging specialist. Respond with JSON only."

func buildPrompt(code, language, expectedBehavior string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze the following %s code for correctness, errors, and issues.\n\n", language)
	fmt.Fprintf(&sb, "```%s\n%s\n```\n", language, code)
	if expectedBehavior != "" {
		fmt.Fprintf(&sb, "Expected behavior: %s\n", expectedBehavior)
	}
	sb.WriteString(`
Provide a JSON response:
{
"is_correct": true/false,
"syntax_errors": ["list of syntax errors found"],
"logic_errors": ["list of logical errors or bugs"],
"runtime_errors": ["potential runtime errors"],
"performance_issues": ["performance problems identified"],
"best_practice_violations": ["code style/best practice issues"],
"solutions": [
  {
    "issue": "description of the issue",
    "solution": "how to fix it",
    "corrected_code": "fixed version of problematic code section",
    "explanation": "why this solution works"
  }
],
"overall_assessment": "summary of code quality and correctness"
}`)
	return sb.String()
}

// ParseVerdict decodes a model response, tolerating a surrounding
// markdown code fence. A response with no judgment is ErrMalformedVerdict.
func ParseVerdict(content string) (*recommend.Verdict, error) {
	body := strings.TrimSpace(content)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	var v recommend.Verdict
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}
	if !v.Valid() {
		return nil, ErrMalformedVerdict
	}
	return &v, nil
}
