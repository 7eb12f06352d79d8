package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume",
	Short: "Parse a resume document into structured JSON",
	Long:  "Parse a plain text, PDF or DOCX resume into structured resume JSON (contact, experience, education, skills, projects).",
	RunE:  runParseResume,
}

var (
	parseResumeInput  string
	parseResumeOutput string
)

func init() {
	parseResumeCmd.Flags().StringVarP(&parseResumeInput, "in", "i", "", "Path to resume file (text, PDF or DOCX)")
	parseResumeCmd.Flags().StringVarP(&parseResumeOutput, "out", "o", "", "Path to output JSON file (stdout when empty)")

	_ = parseResumeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(parseResumeCmd)
}

func runParseResume(cmd *cobra.Command, _ []string) error {
	if isJSONFile(parseResumeInput) {
		return fmt.Errorf("%s is already JSON; use score or tailor directly", parseResumeInput)
	}

	resume, err := readResume(parseResumeInput)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeJSON(out, parseResumeOutput, resume); err != nil {
		return err
	}
	if parseResumeOutput != "" {
		_, _ = fmt.Fprintf(out, "Parsed %d experience entries, %d education entries, %d projects\n",
			len(resume.Experience), len(resume.Education), len(resume.Projects))
		_, _ = fmt.Fprintf(out, "Output: %s\n", parseResumeOutput)
	}
	return nil
}
