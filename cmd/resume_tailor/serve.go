package main

import (
	"fmt"

	"github.com/jonathan/resume-tailor/internal/server"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes scoring, job description analysis, rewriting, tailoring and
export endpoints. Routes that call the language model answer 503 when no API key is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}

	deps := server.Deps{Scorer: scorer}
	if cfg.APIKey != "" {
		client, err := newClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		deps.Client = client
		deps.Rewriter = newRewriter(client, scorer, cfg)
	} else {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: GEMINI_API_KEY is not set; model-backed routes will answer 503\n")
	}

	store, closeStore := newStore(ctx, cfg)
	defer closeStore()
	deps.Cache = store

	srv, err := server.New(server.Config{Port: cfg.Port, RateLimit: ratelimit.LoadConfig()}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
