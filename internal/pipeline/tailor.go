// Package pipeline orchestrates a tailoring session: job description
// extraction, skill targeting, verified bullet rewrites and the before/after score.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/cache"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/scoring"
	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Session steps, in the order they are emitted
const (
	StepIngest         = "ingest"
	StepJobDescription = "jd"
	StepSkillTargets   = "targets"
	StepBullet         = "bullet"
	StepScore          = "score"
	StepComplete       = "complete"
)

// ErrNoJobDescription is returned when a session has neither a structured JD,
// JD text, nor a JD source to ingest.
var ErrNoJobDescription = errors.New("job description is required")

// ProgressEvent represents a progress update during a tailoring session
type ProgressEvent struct {
	Step      string `json:"step"`
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called when session progress occurs. Calls are serialized.
type ProgressCallback func(event ProgressEvent)

// Input describes one tailoring session. Exactly one of JD, JDText or
// JDSource is used, in that order of preference.
type Input struct {
	Resume   *types.Resume
	JD       *types.JobDescription
	JDText   string
	JDSource string // file path or URL
}

// Tailor runs tailoring sessions. It holds no per-session state and is safe
// for concurrent use.
type Tailor struct {
	client   llm.Client
	store    cache.Store
	rewriter *rewriting.Rewriter
	scorer   *scoring.Scorer
	urlOpts  ingestion.URLOptions
}

// NewTailor wires a Tailor. client is only needed when sessions supply JD
// text instead of a structured job description; store may be nil.
func NewTailor(client llm.Client, store cache.Store, rewriter *rewriting.Rewriter, scorer *scoring.Scorer) *Tailor {
	return &Tailor{
		client:   client,
		store:    store,
		rewriter: rewriter,
		scorer:   scorer,
	}
}

// WithURLOptions sets how JD sources that are URLs are fetched.
func (t *Tailor) WithURLOptions(opts ingestion.URLOptions) *Tailor {
	t.urlOpts = opts
	return t
}

// Run executes one session. The input resume is never modified; the result
// carries a tailored copy with the accepted rewrites applied. A quota error
// from the model ends the session and is returned unchanged.
func (t *Tailor) Run(ctx context.Context, in Input, onProgress ProgressCallback) (*types.TailorResult, error) {
	if in.Resume == nil {
		return nil, &parsing.ValidationError{Field: "resume", Message: "resume is required"}
	}

	sessionID := uuid.NewString()
	logger := slog.With(slog.String("session_id", sessionID))
	start := time.Now()
	emit := func(step, message string, content any) {
		if onProgress != nil {
			onProgress(ProgressEvent{Step: step, Message: message, SessionID: sessionID, Content: content})
		}
	}

	resume := in.Resume.Clone()
	resume.Sanitize()

	jd, err := t.resolveJobDescription(ctx, in, emit)
	if err != nil {
		logger.Error("job description step failed", slog.Any("error", err))
		return nil, err
	}
	emit(StepJobDescription, describeJD(jd), jd)

	targets, err := skills.BuildSkillTargets(jd)
	switch {
	case errors.Is(err, skills.ErrNoSkills):
		logger.Warn("job description names no skills")
		emit(StepSkillTargets, "No skill targets found", &types.SkillTargets{Skills: []types.Skill{}})
	case err != nil:
		return nil, fmt.Errorf("failed to build skill targets: %w", err)
	default:
		emit(StepSkillTargets, fmt.Sprintf("Targeting %d skills", len(targets.Skills)), targets)
	}

	bullets, err := t.rewriter.Stream(ctx, resume, jd, func(vb types.VerifiedBullet) {
		emit(StepBullet, fmt.Sprintf("Bullet %d.%d %s", vb.ExperienceIndex, vb.BulletIndex, vb.State), vb)
	})
	if err != nil {
		logger.Error("rewriting failed", slog.Any("error", err))
		return nil, fmt.Errorf("rewriting bullets failed: %w", err)
	}

	edits := rewriting.Edits(bullets)
	score := t.scorer.CompareEdits(resume, jd, edits)
	emit(StepScore, fmt.Sprintf("Score %d → %d", score.BeforeScore, score.AfterScore), score)

	result := &types.TailorResult{
		SessionID: sessionID,
		JD:        jd,
		Bullets:   bullets,
		Resume:    scoring.ApplyEdits(resume, edits),
		Score:     score,
	}

	logger.Info("tailoring session complete",
		slog.Int("bullets", len(bullets)),
		slog.Int("accepted", len(edits)),
		slog.Int("before", score.BeforeScore),
		slog.Int("after", score.AfterScore),
		slog.Duration("elapsed", time.Since(start)))
	emit(StepComplete, fmt.Sprintf("Accepted %d of %d rewrites", len(edits), len(bullets)), result)
	return result, nil
}

func (t *Tailor) resolveJobDescription(ctx context.Context, in Input, emit func(string, string, any)) (*types.JobDescription, error) {
	if in.JD != nil {
		jd := *in.JD
		jd.Sanitize()
		return &jd, nil
	}

	text := in.JDText
	if strings.TrimSpace(text) == "" && in.JDSource != "" {
		ingested, meta, err := ingestion.Ingest(ctx, in.JDSource, t.urlOpts)
		if err != nil {
			return nil, fmt.Errorf("job ingestion failed: %w", err)
		}
		emit(StepIngest, fmt.Sprintf("Ingested job posting from %s", in.JDSource), meta)
		text = ingested
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoJobDescription
	}
	if t.client == nil {
		return nil, fmt.Errorf("job description text given but no model client is configured")
	}

	jd, err := parsing.ParseJobDescription(ctx, t.client, t.store, text)
	if err != nil {
		return nil, fmt.Errorf("job parsing failed: %w", err)
	}
	return jd, nil
}

func describeJD(jd *types.JobDescription) string {
	title := jd.Title
	if title == "" {
		title = "untitled role"
	}
	return fmt.Sprintf("Parsed job description: %s (%d required skills)", title, len(jd.RequiredSkills))
}
