// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, ending in "..." when cut
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// writeList writes up to limit items as indented bullets
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for _, item := range items[:min(len(items), limit)] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
	sb.WriteString("\n")
}

// PrintJobDescription outputs a human-readable summary of the extracted job description.
func (p *Printer) PrintJobDescription(jd *types.JobDescription) {
	if jd == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title:      %s\n", orDash(jd.Title))
	fmt.Fprintf(&sb, "Seniority:  %s\n", orDash(jd.Seniority))
	fmt.Fprintf(&sb, "Experience: %s\n", formatYears(jd.YearsExperience))
	sb.WriteString("\n")

	writeList(&sb, "Required", jd.RequiredSkills, maxItemsToShow)
	writeList(&sb, "Preferred", jd.PreferredSkills, 3)
	writeList(&sb, "Keywords", jd.Keywords, 3)
	if len(jd.Responsibilities) > 0 {
		fmt.Fprintf(&sb, "Responsibilities: %d\n", len(jd.Responsibilities))
	}

	p.printBox("JOB DESCRIPTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkillTargets outputs the weighted skills a tailoring session aims for.
func (p *Printer) PrintSkillTargets(targets *types.SkillTargets) {
	if targets == nil || len(targets.Skills) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(targets.Skills), maxItemsToShow*2)
	for _, s := range targets.Skills[:count] {
		fmt.Fprintf(&sb, "%-30s %.1f  %s\n", truncate(s.Name, 30), s.Weight, s.Source)
	}
	if len(targets.Skills) > count {
		fmt.Fprintf(&sb, "... and %d more\n", len(targets.Skills)-count)
	}

	p.printBox("SKILL TARGETS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScoreReport outputs the before/after score with its sub-scores.
func (p *Printer) PrintScoreReport(resp *types.ScoreResponse) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score:  %d → %d (%+d)\n\n", resp.BeforeScore, resp.AfterScore, resp.Delta)
	sb.WriteString("                     before   after\n")
	writeRow(&sb, "Required coverage", resp.Breakdown.RequiredCoverage, resp.AfterBreakdown.RequiredCoverage)
	writeRow(&sb, "Preferred coverage", resp.Breakdown.PreferredCoverage, resp.AfterBreakdown.PreferredCoverage)
	writeRow(&sb, "Semantic similarity", resp.Breakdown.SemanticSimilarity, resp.AfterBreakdown.SemanticSimilarity)
	writeRow(&sb, "Keyword coverage", resp.Breakdown.KeywordCoverage, resp.AfterBreakdown.KeywordCoverage)
	writeRow(&sb, "Format penalty", resp.Breakdown.FormatPenalty, resp.AfterBreakdown.FormatPenalty)
	sb.WriteString("\n")

	writeList(&sb, "Missing required", resp.MissingRequired, maxItemsToShow)
	if len(resp.RejectedRewrites) > 0 {
		fmt.Fprintf(&sb, "Rejected rewrites: %d\n", len(resp.RejectedRewrites))
	}

	p.printBox("MATCH SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

func writeRow(sb *strings.Builder, label string, before, after float64) {
	fmt.Fprintf(sb, "%-20s %6.3f  %6.3f\n", label, before, after)
}

// PrintBullets outputs the verified bullets with their outcome and style check indicators.
func (p *Printer) PrintBullets(bullets []types.VerifiedBullet) {
	if len(bullets) == 0 {
		return
	}

	accepted := 0
	for _, b := range bullets {
		if b.Accepted {
			accepted++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Accepted %d of %d rewrites:\n\n", accepted, len(bullets))

	count := min(len(bullets), maxItemsToShow)
	for i, b := range bullets[:count] {
		mark := "✓"
		if !b.Accepted {
			mark = "↺"
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, b.Text)
		fmt.Fprintf(&sb, "  %s, confidence %d", b.State, b.Confidence)
		if len(b.Invented) > 0 {
			fmt.Fprintf(&sb, ", invented %s", strings.Join(b.Invented, ","))
		}
		sb.WriteString("\n")

		if checks := styleMarks(b.StyleChecks); checks != "" {
			fmt.Fprintf(&sb, "  [%s]\n", checks)
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(bullets) > maxItemsToShow {
		fmt.Fprintf(&sb, "\n... and %d more bullets", len(bullets)-maxItemsToShow)
	}

	p.printBox("REWRITTEN BULLETS", strings.TrimSuffix(sb.String(), "\n"))
}

func styleMarks(c types.StyleChecks) string {
	var checks []string
	if c.StrongVerb {
		checks = append(checks, "✓verb")
	}
	if c.Quantified {
		checks = append(checks, "✓metrics")
	}
	if c.NoTaboo {
		checks = append(checks, "✓style")
	}
	if c.WordCount {
		checks = append(checks, "✓length")
	}
	return strings.Join(checks, " ")
}

// PrintForbiddenPhrases outputs taboo phrases found per bullet ID.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintForbiddenPhrases(found map[string][]string) {
	if len(found) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO FORBIDDEN PHRASES")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found phrases in %d bullets:\n\n", len(found))
	for id, phrases := range found {
		fmt.Fprintf(&sb, "⚠ %s\n  %s\n", id, strings.Join(phrases, ", "))
	}

	p.printBox("FORBIDDEN PHRASES", strings.TrimSuffix(sb.String(), "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatYears(y types.YearsExperience) string {
	switch {
	case y.Min != nil && y.Max != nil:
		return fmt.Sprintf("%d-%d years", *y.Min, *y.Max)
	case y.Min != nil:
		return fmt.Sprintf("%d+ years", *y.Min)
	case y.Max != nil:
		return fmt.Sprintf("up to %d years", *y.Max)
	}
	return "-"
}
