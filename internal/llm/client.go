package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrMissingAPIKey is returned when a provider client is created without a key.
var ErrMissingAPIKey = errors.New("API key is required")

// Client is the opaque text-generation capability used for JD extraction,
// bullet rewriting and rationales.
type Client interface {
	// GenerateContent returns free text for the prompt
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON returns a JSON document for the prompt with any code fences removed
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the provider model name for a tier
	GetModel(tier ModelTier) string
	Close() error
}

// BlockedError is a reply the provider withheld, for example on safety
// grounds. Retrying the same prompt gives the same answer.
type BlockedError struct {
	Model  string
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s withheld its reply: %s", e.Model, e.Reason)
}

// NewClient creates a provider client wrapped with the configured retry
// policy, or the default one when config.Retry is zero.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Provider != ProviderGemini && config.Provider != "" {
		return nil, fmt.Errorf("unsupported provider %q", config.Provider)
	}

	base, err := NewGeminiClient(ctx, config, apiKey)
	if err != nil {
		return nil, err
	}

	retry := config.Retry
	if retry == (RetryConfig{}) {
		retry = DefaultRetryConfig()
	}
	return WithRetry(base, retry), nil
}

// GeminiClient implements Client on the Gemini API.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient connects to Gemini with an API key.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

// GenerateContent implements Client.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, "text/plain")
}

// GenerateJSON implements Client. The model is asked for application/json
// and any markdown fence it adds anyway is stripped.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, prompt, tier, "application/json")
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, tier ModelTier, mimeType string) (string, error) {
	name := c.config.GetModel(tier)
	if name == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(name)
	model.SetTemperature(c.config.temperature())
	model.ResponseMIMEType = mimeType

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%s call failed: %w", name, err)
	}
	if u := resp.UsageMetadata; u != nil {
		slog.Debug("model call",
			slog.String("model", name),
			slog.Int("prompt_tokens", int(u.PromptTokenCount)),
			slog.Int("reply_tokens", int(u.CandidatesTokenCount)))
	}
	return replyText(name, resp)
}

// GetModel implements Client.
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close implements Client.
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// replyText concatenates the text parts of the first candidate.
func replyText(model string, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%s returned no response", model)
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return "", &BlockedError{Model: model, Reason: fmt.Sprintf("prompt blocked (%v)", fb.BlockReason)}
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%s returned no candidates", model)
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return "", &BlockedError{Model: model, Reason: fmt.Sprintf("finished with %v", candidate.FinishReason)}
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%s returned an empty candidate", model)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%s returned no text", model)
	}
	return sb.String(), nil
}
