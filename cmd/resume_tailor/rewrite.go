package main

import (
	"fmt"

	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Rewrite one bullet toward a job description without inventing facts",
	Long: `Propose a rewrite of one resume bullet that names the job's missing skills, then verify it.
A proposal that introduces numbers absent from the bullet and its context is retried once
with a stricter prompt; if it still invents facts the original bullet is kept.`,
	RunE: runRewrite,
}

var (
	rewriteBullet  string
	rewriteCompany string
	rewriteRole    string
	rewriteContext []string
	rewriteJDFile  string
	rewriteExplain bool
	rewriteJSON    bool
)

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteBullet, "bullet", "b", "", "Bullet text to rewrite")
	rewriteCmd.Flags().StringVar(&rewriteCompany, "company", "", "Company the bullet belongs to")
	rewriteCmd.Flags().StringVar(&rewriteRole, "role", "", "Role the bullet belongs to")
	rewriteCmd.Flags().StringArrayVar(&rewriteContext, "context", nil, "Sibling bullet that may supply facts (repeatable)")
	rewriteCmd.Flags().StringVarP(&rewriteJDFile, "jd", "j", "", "Path to structured job description JSON")
	rewriteCmd.Flags().BoolVar(&rewriteExplain, "explain", false, "Also print a short rationale for an accepted rewrite")
	rewriteCmd.Flags().BoolVar(&rewriteJSON, "json", false, "Print the verified bullet as JSON")

	_ = rewriteCmd.MarkFlagRequired("bullet")
	_ = rewriteCmd.MarkFlagRequired("jd")

	rootCmd.AddCommand(rewriteCmd)
}

func runRewrite(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	jd, err := readJobDescription(rewriteJDFile)
	if err != nil {
		return err
	}

	req := types.RewriteRequest{
		Bullet:  rewriteBullet,
		Company: rewriteCompany,
		Role:    rewriteRole,
		Context: rewriteContext,
		JD:      jd,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid rewrite request: %w", err)
	}

	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}
	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	exp := types.Experience{
		Company: req.Company,
		Role:    req.Role,
		Bullets: append([]string{req.Bullet}, req.Context...),
	}
	vb, err := newRewriter(client, scorer, cfg).RewriteExperienceBullet(ctx, exp, 0, jd)
	if err != nil {
		return fmt.Errorf("failed to rewrite bullet: %w", err)
	}

	out := cmd.OutOrStdout()
	if rewriteJSON {
		return writeJSON(out, "", vb)
	}

	observability.NewPrinter(out).PrintBullets([]types.VerifiedBullet{vb})
	if rewriteExplain && vb.Accepted {
		keywords := append(append([]string{}, jd.RequiredSkills...), jd.PreferredSkills...)
		rationale, err := rewriting.Explain(ctx, client, vb.Original, vb.Text, keywords)
		if err != nil {
			return fmt.Errorf("failed to explain rewrite: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Why: %s\n", rationale)
	}
	return nil
}
