package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/resume-tailor/internal/cache"
	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/spf13/cobra"
)

var analyzeJDCmd = &cobra.Command{
	Use:   "analyze-jd",
	Short: "Extract a structured job description from a posting",
	Long:  "Read a job posting from a file or URL and extract its title, seniority, skills, responsibilities and keywords as JSON.",
	RunE:  runAnalyzeJD,
}

var (
	analyzeJob        string
	analyzeJobURL     string
	analyzeOutputFile string
	analyzeUseBrowser bool
)

func init() {
	analyzeJDCmd.Flags().StringVarP(&analyzeJob, "job", "j", "", "Path to job posting file (text, PDF or DOCX)")
	analyzeJDCmd.Flags().StringVar(&analyzeJobURL, "job-url", "", "URL to fetch job posting from")
	analyzeJDCmd.Flags().StringVarP(&analyzeOutputFile, "out", "o", "", "Path to output JSON file (stdout when empty)")
	analyzeJDCmd.Flags().BoolVar(&analyzeUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")

	analyzeJDCmd.MarkFlagsOneRequired("job", "job-url")
	analyzeJDCmd.MarkFlagsMutuallyExclusive("job", "job-url")

	rootCmd.AddCommand(analyzeJDCmd)
}

// urlOptions builds fetch options that share the page cache with extraction.
func urlOptions(store cache.Store, useBrowser bool) ingestion.URLOptions {
	return ingestion.URLOptions{
		Fetcher:        fetch.NewCachedFetcher(store, fetch.DefaultOptions(), fetch.DefaultPageTTL),
		UseBrowser:     useBrowser,
		BrowserTimeout: 45 * time.Second,
	}
}

func runAnalyzeJD(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = analyzeUseBrowser
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	store, closeStore := newStore(ctx, cfg)
	defer closeStore()

	source := analyzeJob
	if analyzeJobURL != "" {
		source = analyzeJobURL
	}

	text, meta, err := ingestion.Ingest(ctx, source, urlOptions(store, cfg.UseBrowser))
	if err != nil {
		return fmt.Errorf("failed to ingest job posting: %w", err)
	}
	slog.Debug("ingested job posting", slog.String("source", source), slog.String("hash", meta.Hash))

	jd, err := parsing.ParseJobDescription(ctx, client, store, text)
	if err != nil {
		return fmt.Errorf("failed to parse job description: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintJobDescription(jd)
	}
	if err := writeJSON(out, analyzeOutputFile, jd); err != nil {
		return err
	}
	if analyzeOutputFile != "" {
		_, _ = fmt.Fprintf(out, "Successfully parsed job description\n")
		_, _ = fmt.Fprintf(out, "Output: %s\n", analyzeOutputFile)
	}
	return nil
}
