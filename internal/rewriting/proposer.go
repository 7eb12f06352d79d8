package rewriting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

// ProposalRequest carries what the rewrite capability needs for one bullet
type ProposalRequest struct {
	Bullet  string
	Company string
	Role    string
	// Context holds the sibling bullets of the same role
	Context     []string
	JD          *types.JobDescription
	FocusSkills []string
	// Strict asks for the stricter retry prompt after a rejection
	Strict   bool
	Invented []string
}

// Proposer produces a rewrite candidate for one bullet
type Proposer interface {
	Propose(ctx context.Context, req ProposalRequest) (types.RewriteCandidate, error)
}

// LLMProposer proposes rewrites with an llm.Client
type LLMProposer struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewLLMProposer creates a proposer using the advanced model tier.
func NewLLMProposer(client llm.Client) *LLMProposer {
	return &LLMProposer{client: client, tier: llm.TierAdvanced}
}

// Propose asks the model for a rewrite and parses its JSON reply.
func (p *LLMProposer) Propose(ctx context.Context, req ProposalRequest) (types.RewriteCandidate, error) {
	prompt := buildRewritingPrompt(req)

	responseText, err := p.client.GenerateJSON(ctx, prompt, p.tier)
	if err != nil {
		if llm.IsQuota(err) {
			return types.RewriteCandidate{}, err
		}
		return types.RewriteCandidate{}, &APICallError{Message: "failed to generate rewrite", Cause: err}
	}

	candidate, err := parseProposal(responseText)
	if err != nil {
		return types.RewriteCandidate{}, err
	}
	candidate.Original = req.Bullet
	return candidate, nil
}

func buildRewritingPrompt(req ProposalRequest) string {
	jd := req.JD
	if jd == nil {
		jd = &types.JobDescription{}
	}

	contextLines := "(none)"
	if len(req.Context) > 0 {
		contextLines = "- " + strings.Join(req.Context, "\n- ")
	}

	var sb strings.Builder
	sb.WriteString(prompts.Format(prompts.MustGet("rewriting.json", "rewrite-bullet"), map[string]string{
		"Bullet":          req.Bullet,
		"Role":            orUnknown(req.Role),
		"Company":         orUnknown(req.Company),
		"Context":         contextLines,
		"JobTitle":        orUnknown(jd.Title),
		"RequiredSkills":  joinOrNone(jd.RequiredSkills),
		"PreferredSkills": joinOrNone(jd.PreferredSkills),
		"Keywords":        joinOrNone(jd.Keywords),
		"FocusSkills":     joinOrNone(req.FocusSkills),
	}))
	sb.WriteString(prompts.MustGet("rewriting.json", "rewrite-bullet-rules"))

	if req.Strict {
		sb.WriteString(prompts.Format(prompts.MustGet("rewriting.json", "rewrite-bullet-strict"), map[string]string{
			"Invented": joinOrNone(req.Invented),
		}))
	}
	return sb.String()
}

type proposalResponse struct {
	Rewritten   string          `json:"rewritten"`
	Explanation string          `json:"explanation"`
	Confidence  json.RawMessage `json:"confidence"`
}

// parseProposal decodes {"rewritten", "explanation", "confidence"}. Confidence
// may arrive as a number or numeric string and is clamped to 0..100.
func parseProposal(responseText string) (types.RewriteCandidate, error) {
	var resp proposalResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(responseText)), &resp); err != nil {
		return types.RewriteCandidate{}, &ParseError{Message: "failed to parse rewrite response", Cause: err}
	}

	return types.RewriteCandidate{
		Proposed:    strings.TrimSpace(resp.Rewritten),
		Explanation: strings.TrimSpace(resp.Explanation),
		Confidence:  parseConfidence(resp.Confidence),
	}, nil
}

func parseConfidence(raw json.RawMessage) int {
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		var text string
		if json.Unmarshal(raw, &text) != nil {
			return 0
		}
		if _, err := fmt.Sscanf(strings.TrimSuffix(strings.TrimSpace(text), "%"), "%g", &value); err != nil {
			return 0
		}
	}
	// fractions are read as percentages
	if value > 0 && value < 1 {
		value *= 100
	}
	return int(max(0, min(100, value+0.5)))
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unknown)"
	}
	return s
}
