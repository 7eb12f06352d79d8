// Package parsing turns raw job postings and resume text into structured documents.
package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/cache"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
	"golang.org/x/sync/errgroup"
)

const (
	// JobDescriptionCacheNamespace prefixes cache keys for extracted job descriptions
	JobDescriptionCacheNamespace = "jd"

	// chunkThreshold is the length above which a posting is extracted in parts
	chunkThreshold = 12000
	// maxChunkChars bounds the size of a single part
	maxChunkChars = 6000
	// chunkConcurrency bounds concurrent part extractions
	chunkConcurrency = 3
)

// ParseJobDescription extracts a structured JobDescription from posting text.
// Results are cached by the SHA-256 of the trimmed text when store is non-nil;
// cache failures are logged and otherwise ignored.
func ParseJobDescription(ctx context.Context, client llm.Client, store cache.Store, text string) (*types.JobDescription, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Field: "text", Message: "job description text is required"}
	}
	if utf8.RuneCountInString(text) > types.MaxJobDescriptionChars {
		return nil, ErrTooLarge
	}

	key := cache.Key(JobDescriptionCacheNamespace, text)
	if store != nil {
		var cached types.JobDescription
		found, err := store.GetJSON(ctx, key, &cached)
		if err != nil {
			slog.Warn("job description cache read failed", slog.Any("error", err))
		} else if found {
			slog.Debug("job description cache hit", slog.String("key", key[:len(JobDescriptionCacheNamespace)+9]))
			cached.Sanitize()
			return &cached, nil
		}
	}

	var (
		jd  *types.JobDescription
		err error
	)
	if utf8.RuneCountInString(text) > chunkThreshold {
		jd, err = extractChunked(ctx, client, text)
	} else {
		jd, err = extractJobDescription(ctx, client, llm.BuildExtractionPrompt(llm.JobDescriptionSchema(), text))
	}
	if err != nil {
		return nil, err
	}

	NormalizeJobDescription(jd)

	if store != nil {
		if err := store.SetJSON(ctx, key, jd, cache.DefaultTTL); err != nil {
			slog.Warn("job description cache write failed", slog.Any("error", err))
		}
	}
	return jd, nil
}

// extractJobDescription runs one extraction, retrying once with a stricter
// instruction when the reply is not valid JSON.
func extractJobDescription(ctx context.Context, client llm.Client, prompt string) (*types.JobDescription, error) {
	var lastErr error
	for attempt := range 2 {
		p := prompt
		if attempt > 0 {
			p += llm.StrictJSONSuffix
		}

		responseText, err := client.GenerateJSON(ctx, p, llm.TierStandard)
		if err != nil {
			if llm.IsQuota(err) || ctx.Err() != nil {
				return nil, err
			}
			return nil, &APICallError{Message: "failed to extract job description", Cause: err}
		}

		jd, err := parseJobDescriptionJSON(responseText)
		if err == nil {
			return jd, nil
		}
		slog.Warn("job description reply was not valid JSON",
			slog.Int("attempt", attempt+1),
			slog.Any("error", err))
		lastErr = err
	}

	var parseErr *ParseError
	if errors.As(lastErr, &parseErr) {
		parseErr.Attempts = 2
	}
	return nil, lastErr
}

// rawJobDescription tolerates the loose shapes models return: null arrays
// and fractional or quoted year counts.
type rawJobDescription struct {
	Title            string   `json:"title"`
	Seniority        string   `json:"seniority"`
	RequiredSkills   []string `json:"requiredSkills"`
	PreferredSkills  []string `json:"preferredSkills"`
	SoftSkills       []string `json:"softSkills"`
	Responsibilities []string `json:"responsibilities"`
	Keywords         []string `json:"keywords"`
	YearsExperience  *struct {
		Min json.RawMessage `json:"min"`
		Max json.RawMessage `json:"max"`
	} `json:"yearsExperience"`
}

func parseJobDescriptionJSON(responseText string) (*types.JobDescription, error) {
	var raw rawJobDescription
	if err := json.Unmarshal([]byte(responseText), &raw); err != nil {
		return nil, &ParseError{Message: "failed to parse job description JSON", Cause: err}
	}

	jd := &types.JobDescription{
		Title:            raw.Title,
		Seniority:        raw.Seniority,
		RequiredSkills:   raw.RequiredSkills,
		PreferredSkills:  raw.PreferredSkills,
		SoftSkills:       raw.SoftSkills,
		Responsibilities: raw.Responsibilities,
		Keywords:         raw.Keywords,
	}
	if raw.YearsExperience != nil {
		jd.YearsExperience.Min = parseYears(raw.YearsExperience.Min)
		jd.YearsExperience.Max = parseYears(raw.YearsExperience.Max)
	}
	jd.Sanitize()
	return jd, nil
}

// parseYears accepts a number or numeric string; anything else is absent.
func parseYears(raw json.RawMessage) *int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	s = strings.TrimSuffix(strings.TrimSpace(s), "+")
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

// extractChunked extracts each paragraph-aligned part concurrently and merges
// the results in document order.
func extractChunked(ctx context.Context, client llm.Client, text string) (*types.JobDescription, error) {
	chunks := SplitChunks(text, maxChunkChars)
	parts := make([]*types.JobDescription, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(chunkConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			note := prompts.Format(prompts.MustGet("parsing.json", "extract-job-description-chunk"), map[string]string{
				"Part":  strconv.Itoa(i + 1),
				"Total": strconv.Itoa(len(chunks)),
			})
			jd, err := extractJobDescription(gctx, client, note+llm.BuildExtractionPrompt(llm.JobDescriptionSchema(), chunk))
			if err != nil {
				return err
			}
			parts[i] = jd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("extracted job description in parts", slog.Int("parts", len(chunks)))
	return mergeJobDescriptions(parts), nil
}

// SplitChunks splits text on blank-line paragraph boundaries into parts of at
// most limit characters. A single paragraph longer than limit is split on
// whitespace.
func SplitChunks(text string, limit int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for _, piece := range splitLong(para, limit) {
			if current.Len() > 0 && utf8.RuneCountInString(current.String())+2+utf8.RuneCountInString(piece) > limit {
				flush()
			}
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(piece)
		}
	}
	flush()
	return chunks
}

func splitLong(para string, limit int) []string {
	if utf8.RuneCountInString(para) <= limit {
		return []string{para}
	}
	var (
		pieces []string
		b      strings.Builder
		n      int
	)
	for _, word := range strings.Fields(para) {
		wl := utf8.RuneCountInString(word)
		if n > 0 && n+1+wl > limit {
			pieces = append(pieces, b.String())
			b.Reset()
			n = 0
		}
		if n > 0 {
			b.WriteByte(' ')
			n++
		}
		b.WriteString(word)
		n += wl
	}
	if n > 0 {
		pieces = append(pieces, b.String())
	}
	return pieces
}

// mergeJobDescriptions combines part extractions. Scalars come from the first
// part that has them, lists are concatenated, and the years range is widened.
func mergeJobDescriptions(parts []*types.JobDescription) *types.JobDescription {
	merged := &types.JobDescription{}
	for _, p := range parts {
		if p == nil {
			continue
		}
		if merged.Title == "" {
			merged.Title = p.Title
		}
		if merged.Seniority == "" {
			merged.Seniority = p.Seniority
		}
		merged.RequiredSkills = append(merged.RequiredSkills, p.RequiredSkills...)
		merged.PreferredSkills = append(merged.PreferredSkills, p.PreferredSkills...)
		merged.SoftSkills = append(merged.SoftSkills, p.SoftSkills...)
		merged.Responsibilities = append(merged.Responsibilities, p.Responsibilities...)
		merged.Keywords = append(merged.Keywords, p.Keywords...)

		if m := p.YearsExperience.Min; m != nil && (merged.YearsExperience.Min == nil || *m < *merged.YearsExperience.Min) {
			merged.YearsExperience.Min = m
		}
		if m := p.YearsExperience.Max; m != nil && (merged.YearsExperience.Max == nil || *m > *merged.YearsExperience.Max) {
			merged.YearsExperience.Max = m
		}
	}
	merged.Sanitize()
	return merged
}
