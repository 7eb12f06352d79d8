package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume against a job description",
	Long: `Score a resume against a structured job description and report the before/after comparison.

With --rewrites, each original/rewritten pair is first checked for invented numbers; rejected
pairs are listed and left out of the after score.`,
	RunE: runScore,
}

var (
	scoreResumeFile   string
	scoreJDFile       string
	scoreRewritesFile string
	scoreOutputFile   string
	scoreJSON         bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreResumeFile, "resume", "r", "", "Path to resume (JSON, text, PDF or DOCX)")
	scoreCmd.Flags().StringVarP(&scoreJDFile, "jd", "j", "", "Path to structured job description JSON")
	scoreCmd.Flags().StringVar(&scoreRewritesFile, "rewrites", "", "Path to JSON array of {original, rewritten} pairs")
	scoreCmd.Flags().StringVarP(&scoreOutputFile, "out", "o", "", "Write the score response JSON to this file")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the score response as JSON instead of a report")

	_ = scoreCmd.MarkFlagRequired("resume")
	_ = scoreCmd.MarkFlagRequired("jd")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}

	resume, err := readResume(scoreResumeFile)
	if err != nil {
		return err
	}
	jd, err := readJobDescription(scoreJDFile)
	if err != nil {
		return err
	}

	var rewrites []types.BulletRewrite
	if scoreRewritesFile != "" {
		data, err := os.ReadFile(scoreRewritesFile)
		if err != nil {
			return fmt.Errorf("failed to read rewrites file: %w", err)
		}
		if err := json.Unmarshal(data, &rewrites); err != nil {
			return fmt.Errorf("failed to parse rewrites JSON: %w", err)
		}
	}

	req := types.ScoreRequest{Resume: resume, JD: jd, RewrittenBullets: rewrites}
	req.Sanitize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid score request: %w", err)
	}

	edits, rejected := rewriting.VerifyRewrites(req.Resume, req.RewrittenBullets)
	resp := scorer.CompareEdits(req.Resume, req.JD, edits)
	if len(rejected) > 0 {
		resp.RejectedRewrites = rejected
	}

	out := cmd.OutOrStdout()
	if scoreJSON || scoreOutputFile != "" {
		return writeJSON(out, scoreOutputFile, resp)
	}

	observability.NewPrinter(out).PrintScoreReport(&resp)
	for _, rw := range rejected {
		_, _ = fmt.Fprintf(out, "Rejected rewrite (invented facts): %q\n", rw.Rewritten)
	}
	return nil
}
