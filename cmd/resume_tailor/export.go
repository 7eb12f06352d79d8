package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a resume to PDF or HTML",
	Long: `Render a resume with one of the built-in templates and print it to an A4 PDF through headless
Chrome. With --html the rendered HTML is written instead and no browser is needed.`,
	RunE: runExport,
}

var (
	exportResumeFile string
	exportTemplate   string
	exportOutputFile string
	exportHTML       bool
	exportTimeout    time.Duration
	exportChromePath string
)

func init() {
	exportCmd.Flags().StringVarP(&exportResumeFile, "resume", "r", "", "Path to resume (JSON, text, PDF or DOCX)")
	exportCmd.Flags().StringVarP(&exportTemplate, "template", "t", "", "Template name: "+strings.Join(rendering.Templates(), ", "))
	exportCmd.Flags().StringVarP(&exportOutputFile, "out", "o", "", "Path to output file")
	exportCmd.Flags().BoolVar(&exportHTML, "html", false, "Write HTML instead of PDF")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", rendering.DefaultPDFTimeout, "Maximum time for one PDF render")
	exportCmd.Flags().StringVar(&exportChromePath, "chrome", "", "Path to the Chrome binary (auto-detected when empty)")

	_ = exportCmd.MarkFlagRequired("resume")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("template") {
		cfg.Template = exportTemplate
	}

	resume, err := readResume(exportResumeFile)
	if err != nil {
		return err
	}
	req := types.ExportRequest{Resume: resume, Template: cfg.Template}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid export request: %w", err)
	}

	out := cmd.OutOrStdout()
	if exportHTML {
		html, err := rendering.RenderHTML(req.Resume, req.Template)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOutputFile, []byte(html), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Rendered %s template to %s\n", req.Template, exportOutputFile)
		return nil
	}

	renderer := rendering.ChromePDF{Timeout: exportTimeout, ExecPath: exportChromePath}
	data, err := rendering.ExportPDF(cmd.Context(), renderer, req.Resume, req.Template)
	if err != nil {
		return fmt.Errorf("failed to export PDF: %w", err)
	}
	if err := os.WriteFile(exportOutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	pages, err := rendering.PageCount(data)
	if err != nil {
		_, _ = fmt.Fprintf(out, "Exported %s (%d bytes)\n", exportOutputFile, len(data))
		return nil
	}
	_, _ = fmt.Fprintf(out, "Exported %s (%d pages)\n", exportOutputFile, pages)
	if pages > 1 {
		_, _ = fmt.Fprintf(out, "Warning: resume runs to %d pages\n", pages)
	}
	return nil
}
