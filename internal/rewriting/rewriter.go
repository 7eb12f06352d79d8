// Package rewriting rewrites resume bullets toward a job description and
// guards every proposal with a fact-preservation check before it is used.
package rewriting

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/scoring"
	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle position of one bullet rewrite
type State string

// Rewrite states: pending, proposed, then accepted or rejected; a bullet
// whose attempts are exhausted ends in fallback.
const (
	StatePending  State = "pending"
	StateProposed State = "proposed"
	StateAccepted State = "accepted"
	StateRejected State = "rejected"
	StateFallback State = "fallback"
)

const (
	// DefaultMaxAttempts is the first proposal plus one strict retry
	DefaultMaxAttempts = 2
	// DefaultFallbackConfidence marks bullets that kept their original text
	DefaultFallbackConfidence = 30
	// DefaultConcurrency bounds in-flight rewrite calls
	DefaultConcurrency = 4
	// DefaultFocusLimit is the number of missing skills suggested per prompt
	DefaultFocusLimit = 3
)

// Options configures a Rewriter
type Options struct {
	MaxAttempts        int
	FallbackConfidence int
	Concurrency        int
	FocusLimit         int
	TabooPhrases       []string
	Vocabulary         *matching.Vocabulary
}

// DefaultOptions returns the standard retry budget, fallback marker and concurrency.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:        DefaultMaxAttempts,
		FallbackConfidence: DefaultFallbackConfidence,
		Concurrency:        DefaultConcurrency,
		FocusLimit:         DefaultFocusLimit,
		TabooPhrases:       DefaultTabooPhrases,
	}
}

// Rewriter drives the propose, verify, retry, fallback cycle for bullets
type Rewriter struct {
	proposer Proposer
	opts     Options
	matcher  *matching.Matcher
}

// NewRewriter creates a Rewriter. Zero option fields take their defaults.
func NewRewriter(proposer Proposer, opts Options) *Rewriter {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.FallbackConfidence <= 0 {
		opts.FallbackConfidence = DefaultFallbackConfidence
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.FocusLimit <= 0 {
		opts.FocusLimit = DefaultFocusLimit
	}
	if opts.TabooPhrases == nil {
		opts.TabooPhrases = DefaultTabooPhrases
	}
	if opts.Vocabulary == nil {
		opts.Vocabulary = matching.DefaultVocabulary()
	}
	return &Rewriter{
		proposer: proposer,
		opts:     opts,
		matcher:  matching.NewMatcher(opts.Vocabulary, matching.DefaultMatcherOptions()),
	}
}

// RequestFor builds the proposal request and verification context for one
// bullet of an experience entry.
func RequestFor(exp types.Experience, bulletIndex int, jd *types.JobDescription, focus []string) (ProposalRequest, VerifyContext) {
	vc := ContextFor(exp, bulletIndex)
	siblings := make([]string, 0, len(exp.Bullets))
	for i, b := range exp.Bullets {
		if i != bulletIndex && strings.TrimSpace(b) != "" {
			siblings = append(siblings, b)
		}
	}
	return ProposalRequest{
		Bullet:      vc.BulletText,
		Company:     exp.Company,
		Role:        exp.Role,
		Context:     siblings,
		JD:          jd,
		FocusSkills: focus,
	}, vc
}

// RewriteBullet runs one bullet through the state machine. Rejected and
// failed proposals end in a fallback to the original text; only quota
// errors and cancellation are returned as errors.
func (rw *Rewriter) RewriteBullet(ctx context.Context, req ProposalRequest, vc VerifyContext) (types.VerifiedBullet, error) {
	vb := types.VerifiedBullet{
		Original: req.Bullet,
		Text:     req.Bullet,
		State:    string(StatePending),
	}
	if strings.TrimSpace(req.Bullet) == "" {
		return rw.fallback(vb), nil
	}

	var invented []string
	for attempt := 1; attempt <= rw.opts.MaxAttempts; attempt++ {
		attemptReq := req
		attemptReq.Strict = attempt > 1
		attemptReq.Invented = invented
		vb.Attempts = attempt

		candidate, err := rw.proposer.Propose(ctx, attemptReq)
		if err != nil {
			if llm.IsQuota(err) {
				return vb, err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return vb, ctxErr
			}
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				slog.Warn("unparsable rewrite proposal", slog.Int("attempt", attempt), slog.Any("error", err))
				vb.State = string(StateRejected)
				continue
			}
			slog.Warn("rewrite proposal failed, keeping original", slog.Any("error", err))
			break
		}
		vb.State = string(StateProposed)

		proposed := strings.TrimSpace(candidate.Proposed)
		if proposed == "" {
			vb.State = string(StateRejected)
			continue
		}

		verdict := Verify(vc, proposed)
		if verdict.Accepted {
			vb.Text = proposed
			vb.Accepted = true
			vb.Confidence = candidate.Confidence
			vb.Invented = nil
			vb.State = string(StateAccepted)
			vb.StyleChecks = ValidateStyle(vb.Text, rw.opts.TabooPhrases)
			return vb, nil
		}

		slog.Info("rewrite rejected for invented numbers",
			slog.Int("attempt", attempt),
			slog.Any("invented", verdict.Invented))
		invented = verdict.Invented
		vb.Invented = verdict.Invented
		vb.State = string(StateRejected)
	}

	return rw.fallback(vb), nil
}

func (rw *Rewriter) fallback(vb types.VerifiedBullet) types.VerifiedBullet {
	vb.Text = vb.Original
	vb.Accepted = false
	vb.Confidence = rw.opts.FallbackConfidence
	vb.State = string(StateFallback)
	vb.StyleChecks = ValidateStyle(vb.Text, rw.opts.TabooPhrases)
	return vb
}

// RewriteExperienceBullet rewrites one bullet of exp on its own, focusing on
// the job's skills that the entry does not mention yet.
func (rw *Rewriter) RewriteExperienceBullet(ctx context.Context, exp types.Experience, bulletIndex int, jd *types.JobDescription) (types.VerifiedBullet, error) {
	focus := rw.focusSkills(&types.Resume{Experience: []types.Experience{exp}}, jd)
	req, vc := RequestFor(exp, bulletIndex, jd, focus)
	vb, err := rw.RewriteBullet(ctx, req, vc)
	if err != nil {
		return vb, err
	}
	vb.ID = uuid.NewString()
	vb.BulletIndex = bulletIndex
	return vb, nil
}

// RewriteAll rewrites every non-empty bullet of r. Results keep resume order.
func (rw *Rewriter) RewriteAll(ctx context.Context, r *types.Resume, jd *types.JobDescription) ([]types.VerifiedBullet, error) {
	return rw.Stream(ctx, r, jd, nil)
}

// Stream is RewriteAll with a callback invoked once per finished bullet, in
// completion order. Calls to onDone are serialized. At most
// Options.Concurrency bullets are in flight; a quota error cancels the rest.
func (rw *Rewriter) Stream(ctx context.Context, r *types.Resume, jd *types.JobDescription, onDone func(types.VerifiedBullet)) ([]types.VerifiedBullet, error) {
	if r == nil {
		return []types.VerifiedBullet{}, nil
	}

	focus := rw.focusSkills(r, jd)

	type job struct {
		exp, bullet int
	}
	var jobs []job
	for i, exp := range r.Experience {
		for j, b := range exp.Bullets {
			if strings.TrimSpace(b) != "" {
				jobs = append(jobs, job{exp: i, bullet: j})
			}
		}
	}

	results := make([]types.VerifiedBullet, len(jobs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rw.opts.Concurrency)
	for idx, jb := range jobs {
		g.Go(func() error {
			req, vc := RequestFor(r.Experience[jb.exp], jb.bullet, jd, focus)
			vb, err := rw.RewriteBullet(gctx, req, vc)
			if err != nil {
				return err
			}
			vb.ID = uuid.NewString()
			vb.ExperienceIndex = jb.exp
			vb.BulletIndex = jb.bullet
			results[idx] = vb

			if onDone != nil {
				mu.Lock()
				onDone(vb)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (rw *Rewriter) focusSkills(r *types.Resume, jd *types.JobDescription) []string {
	targets, err := skills.BuildSkillTargets(jd)
	if err != nil {
		return nil
	}
	blob := scoring.BuildBlob(rw.opts.Vocabulary, r)
	return skills.FocusSkills(targets, rw.matcher, blob, rw.opts.FocusLimit)
}

// Edits returns the accepted, changed bullets as positional edits.
func Edits(bullets []types.VerifiedBullet) []types.BulletEdit {
	out := make([]types.BulletEdit, 0, len(bullets))
	for _, b := range bullets {
		if e, ok := b.Edit(); ok {
			out = append(out, e)
		}
	}
	return out
}
