package rewriting

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
)

const maxRationaleWords = 30

// Explain asks the model for a one-sentence rationale of why rewritten is a
// better match for the keywords than original. The reply may be plain text
// or {"rationale": "..."}; it is cut to 30 words.
func Explain(ctx context.Context, client llm.Client, original, rewritten string, keywords []string) (string, error) {
	prompt := prompts.Format(prompts.MustGet("explain.json", "explain-rewrite"), map[string]string{
		"Original":  original,
		"Rewritten": rewritten,
		"Keywords":  joinOrNone(keywords),
	})

	responseText, err := client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		if llm.IsQuota(err) {
			return "", err
		}
		return "", &APICallError{Message: "failed to generate rationale", Cause: err}
	}

	rationale := parseRationale(responseText)
	if rationale == "" {
		return "", &ParseError{Message: "empty rationale"}
	}
	return rationale, nil
}

func parseRationale(responseText string) string {
	text := strings.TrimSpace(responseText)

	cleaned := llm.CleanJSONBlock(text)
	if strings.HasPrefix(cleaned, "{") {
		var resp struct {
			Rationale string `json:"rationale"`
		}
		if err := json.Unmarshal([]byte(cleaned), &resp); err == nil {
			text = resp.Rationale
		}
	}

	text = strings.Trim(strings.TrimSpace(text), "\"")
	words := strings.Fields(text)
	if len(words) > maxRationaleWords {
		words = words[:maxRationaleWords]
	}
	return strings.Join(words, " ")
}
