package rewriting

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	reply      string
	err        error
	lastPrompt string
	lastTier   llm.ModelTier
}

func (c *stubClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	c.lastPrompt, c.lastTier = prompt, tier
	return c.reply, c.err
}

func (c *stubClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.GenerateContent(ctx, prompt, tier)
}

func (c *stubClient) GetModel(llm.ModelTier) string { return "stub" }
func (c *stubClient) Close() error                  { return nil }

func TestLLMProposer_Propose(t *testing.T) {
	client := &stubClient{reply: "```json\n{\"rewritten\": \" Built React dashboards \", \"explanation\": \"adds React\", \"confidence\": 82}\n```"}
	proposer := NewLLMProposer(client)

	candidate, err := proposer.Propose(context.Background(), ProposalRequest{
		Bullet:      "Built dashboards",
		Company:     "Acme",
		Role:        "Engineer",
		Context:     []string{"Mentored 2 interns"},
		JD:          &types.JobDescription{Title: "Frontend Engineer", RequiredSkills: []string{"React"}},
		FocusSkills: []string{"React"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Built dashboards", candidate.Original)
	assert.Equal(t, "Built React dashboards", candidate.Proposed)
	assert.Equal(t, "adds React", candidate.Explanation)
	assert.Equal(t, 82, candidate.Confidence)
	assert.Equal(t, llm.TierAdvanced, client.lastTier)

	assert.Contains(t, client.lastPrompt, `"Built dashboards"`)
	assert.Contains(t, client.lastPrompt, "Engineer at Acme")
	assert.Contains(t, client.lastPrompt, "- Mentored 2 interns")
	assert.Contains(t, client.lastPrompt, "Required skills: React")
	assert.Contains(t, client.lastPrompt, "Preferred skills: (none)")
	assert.Contains(t, client.lastPrompt, "Never add facts")
	assert.NotContains(t, client.lastPrompt, "previous rewrite was rejected")
	assert.NotContains(t, client.lastPrompt, "{{.")
}

func TestLLMProposer_StrictPrompt(t *testing.T) {
	client := &stubClient{reply: `{"rewritten": "x", "confidence": 10}`}

	_, err := NewLLMProposer(client).Propose(context.Background(), ProposalRequest{
		Bullet:   "Built dashboards",
		Strict:   true,
		Invented: []string{"40", "3"},
	})

	require.NoError(t, err)
	assert.Contains(t, client.lastPrompt, "previous rewrite was rejected")
	assert.Contains(t, client.lastPrompt, "40, 3")
	assert.Contains(t, client.lastPrompt, "Role: (unknown) at (unknown)")
}

func TestLLMProposer_Errors(t *testing.T) {
	t.Run("quota passes through", func(t *testing.T) {
		client := &stubClient{err: &llm.QuotaError{Message: "limit"}}
		_, err := NewLLMProposer(client).Propose(context.Background(), ProposalRequest{Bullet: "b"})
		assert.True(t, llm.IsQuota(err))
	})

	t.Run("api failure is wrapped", func(t *testing.T) {
		client := &stubClient{err: errors.New("unavailable")}
		_, err := NewLLMProposer(client).Propose(context.Background(), ProposalRequest{Bullet: "b"})
		var apiErr *APICallError
		assert.ErrorAs(t, err, &apiErr)
	})

	t.Run("unparsable reply", func(t *testing.T) {
		client := &stubClient{reply: "I'd rather not"}
		_, err := NewLLMProposer(client).Propose(context.Background(), ProposalRequest{Bullet: "b"})
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`85`, 85},
		{`"70"`, 70},
		{`"65%"`, 65},
		{`0.9`, 90},
		{`1`, 1},
		{`150`, 100},
		{`-3`, 0},
		{`null`, 0},
		{`"high"`, 0},
		{``, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseConfidence([]byte(tt.raw)))
		})
	}
}

func TestExplain(t *testing.T) {
	t.Run("json rationale", func(t *testing.T) {
		client := &stubClient{reply: `{"rationale": "It names React and TypeScript, which the job requires."}`}

		rationale, err := Explain(context.Background(), client, "Built dashboards", "Built React dashboards", []string{"React"})

		require.NoError(t, err)
		assert.Equal(t, "It names React and TypeScript, which the job requires.", rationale)
		assert.Equal(t, llm.TierLite, client.lastTier)
		assert.Contains(t, client.lastPrompt, "Job keywords: React")
	})

	t.Run("plain text is trimmed to thirty words", func(t *testing.T) {
		client := &stubClient{reply: "\"" + strings.Repeat("word ", 40) + "\""}

		rationale, err := Explain(context.Background(), client, "a", "b", nil)

		require.NoError(t, err)
		assert.Len(t, strings.Fields(rationale), 30)
	})

	t.Run("empty reply", func(t *testing.T) {
		_, err := Explain(context.Background(), &stubClient{reply: "  "}, "a", "b", nil)
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}
