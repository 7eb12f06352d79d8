// Package main provides the resume_tailor CLI: scoring, job description
// analysis, verified bullet rewriting, PDF export and the HTTP API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_tailor",
	Short: "Resume Tailor scores and tailors resumes against job descriptions",
	Long: `Resume Tailor scores a resume against a job description, rewrites bullets toward the job's
skills without inventing facts, and exports the result as a PDF. It also serves the same
operations over HTTP.

Configuration can be loaded from a JSON file using --config. Command-line flags override config file values.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
