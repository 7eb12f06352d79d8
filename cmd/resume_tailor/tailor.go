package main

import (
	"fmt"

	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Run a full tailoring session end-to-end",
	Long: `Orchestrates a tailoring session: job description extraction -> skill targets -> verified bullet
rewrites -> before/after score. The tailored resume keeps every fact of the original.`,
	RunE: runTailor,
}

var (
	tailorResumeFile  string
	tailorJDFile      string
	tailorJob         string
	tailorJobURL      string
	tailorOutputFile  string
	tailorConcurrency int
	tailorUseBrowser  bool
)

func init() {
	tailorCmd.Flags().StringVarP(&tailorResumeFile, "resume", "r", "", "Path to resume (JSON, text, PDF or DOCX)")
	tailorCmd.Flags().StringVar(&tailorJDFile, "jd", "", "Path to structured job description JSON")
	tailorCmd.Flags().StringVarP(&tailorJob, "job", "j", "", "Path to job posting file to extract")
	tailorCmd.Flags().StringVar(&tailorJobURL, "job-url", "", "URL to fetch job posting from")
	tailorCmd.Flags().StringVarP(&tailorOutputFile, "out", "o", "", "Write the tailoring result JSON to this file")
	tailorCmd.Flags().IntVar(&tailorConcurrency, "concurrency", 0, "Maximum bullet rewrites in flight (default 4)")
	tailorCmd.Flags().BoolVar(&tailorUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")

	_ = tailorCmd.MarkFlagRequired("resume")
	tailorCmd.MarkFlagsOneRequired("jd", "job", "job-url")
	tailorCmd.MarkFlagsMutuallyExclusive("jd", "job", "job-url")

	rootCmd.AddCommand(tailorCmd)
}

func runTailor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = tailorConcurrency
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = tailorUseBrowser
	}
	if cfg.Concurrency < 0 {
		return fmt.Errorf("--concurrency must be non-negative")
	}

	resume, err := readResume(tailorResumeFile)
	if err != nil {
		return err
	}
	in := pipeline.Input{Resume: resume}
	switch {
	case tailorJDFile != "":
		if in.JD, err = readJobDescription(tailorJDFile); err != nil {
			return err
		}
	case tailorJobURL != "":
		in.JDSource = tailorJobURL
	default:
		in.JDSource = tailorJob
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

	store, closeStore := newStore(ctx, cfg)
	defer closeStore()

	tailor := pipeline.NewTailor(client, store, newRewriter(client, scorer, cfg), scorer).
		WithURLOptions(urlOptions(store, cfg.UseBrowser))

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)
	result, err := tailor.Run(ctx, in, func(event pipeline.ProgressEvent) {
		if cfg.Verbose {
			printVerboseStep(printer, event)
			return
		}
		_, _ = fmt.Fprintf(out, "[%s] %s\n", event.Step, event.Message)
	})
	if err != nil {
		return fmt.Errorf("tailoring failed: %w", err)
	}

	printer.PrintScoreReport(&result.Score)
	if found := rewriting.CheckForbiddenPhrases(result.Bullets, rewriting.DefaultTabooPhrases); len(found) > 0 {
		printer.PrintForbiddenPhrases(found)
	}

	if tailorOutputFile != "" {
		if err := writeJSON(out, tailorOutputFile, result); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Output: %s\n", tailorOutputFile)
	}
	return nil
}

// printVerboseStep prints the detailed report for the steps that have one.
func printVerboseStep(printer *observability.Printer, event pipeline.ProgressEvent) {
	switch content := event.Content.(type) {
	case *types.JobDescription:
		printer.PrintJobDescription(content)
	case *types.SkillTargets:
		printer.PrintSkillTargets(content)
	case *types.TailorResult:
		printer.PrintBullets(content.Bullets)
	}
}
