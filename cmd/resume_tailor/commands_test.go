package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeJSON = `{
  "contact": {"name": "Jane Doe", "email": "jane@example.com"},
  "experience": [{
    "company": "Acme",
    "role": "Engineer",
    "startDate": "2020",
    "endDate": "2023",
    "bullets": ["Built dashboards for the sales team", "Cut page load time 30% by trimming bundles"]
  }],
  "skills": {"languages": ["JavaScript"]}
}`

const jdJSON = `{"title": "Frontend Engineer", "requiredSkills": ["React", "TypeScript"], "responsibilities": ["Build dashboards"]}`

const resumeText = `Jane Doe
jane@example.com

Experience
Engineer, Acme  2020 - 2023
- Built dashboards for the sales team

Skills
Languages: JavaScript, Go
`

// executeCommand runs the root command in-process with fresh flag values.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace([]string{})
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScoreCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.json", resumeJSON)
	jd := writeFile(t, dir, "jd.json", jdJSON)
	rewrites := writeFile(t, dir, "rewrites.json", `[
		{"original": "Built dashboards for the sales team", "rewritten": "Built React dashboards for the sales team"},
		{"original": "Cut page load time 30% by trimming bundles", "rewritten": "Cut page load time 45% by trimming bundles"}
	]`)

	out, err := executeCommand(t, "score", "--resume", resume, "--jd", jd, "--rewrites", rewrites, "--json")
	require.NoError(t, err, out)

	var resp types.ScoreResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Greater(t, resp.AfterScore, resp.BeforeScore)
	require.Len(t, resp.RejectedRewrites, 1)
	assert.Equal(t, "Cut page load time 45% by trimming bundles", resp.RejectedRewrites[0].Rewritten)
}

func TestScoreCommand_Report(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", resumeText)
	jd := writeFile(t, dir, "jd.json", jdJSON)

	out, err := executeCommand(t, "score", "-r", resume, "-j", jd)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Score:")
	assert.NotContains(t, out, "Rejected rewrite")
}

func TestScoreCommand_OutputFile(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.json", resumeJSON)
	jd := writeFile(t, dir, "jd.json", jdJSON)
	outFile := filepath.Join(dir, "score.json")

	_, err := executeCommand(t, "score", "--resume", resume, "--jd", jd, "--out", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var resp types.ScoreResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, resp.BeforeScore, resp.AfterScore)
}

func TestScoreCommand_KeywordVariantAndVocabulary(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.json", resumeJSON)
	jd := writeFile(t, dir, "jd.json", jdJSON)
	vocab := writeFile(t, dir, "vocab.yaml", "synonyms:\n  dash: dashboards\nstopwords:\n  - sales\n")

	out, err := executeCommand(t, "score", "--resume", resume, "--jd", jd, "--variant", "keyword", "--vocabulary", vocab, "--json")
	require.NoError(t, err, out)

	var resp types.ScoreResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.GreaterOrEqual(t, resp.BeforeScore, 0)
}

func TestScoreCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.json", resumeJSON)
	jd := writeFile(t, dir, "jd.json", jdJSON)
	badJD := writeFile(t, dir, "bad_jd.json", `{"requiredSkills": "React"}`)
	badConfig := writeFile(t, dir, "config.json", `{"scoring_variant": "fuzzy"}`)

	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{name: "missing flags", args: []string{"score"}, errorString: "required flag(s)"},
		{name: "missing jd file", args: []string{"score", "--resume", resume, "--jd", filepath.Join(dir, "nope.json")}, errorString: "failed to read job description file"},
		{name: "schema violation", args: []string{"score", "--resume", resume, "--jd", badJD}, errorString: "invalid job description"},
		{name: "unknown variant", args: []string{"score", "--resume", resume, "--jd", jd, "--variant", "fuzzy"}, errorString: "unknown scoring_variant"},
		{name: "bad config file", args: []string{"score", "--resume", resume, "--jd", jd, "--config", badConfig}, errorString: "unknown scoring_variant"},
		{name: "missing vocabulary", args: []string{"score", "--resume", resume, "--jd", jd, "--vocabulary", filepath.Join(dir, "none.yaml")}, errorString: "vocabulary file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestParseResumeCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "resume.txt", resumeText)

	out, err := executeCommand(t, "parse-resume", "--in", input)
	require.NoError(t, err, out)

	var r types.Resume
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "Jane Doe", r.Contact.Name)
	assert.Equal(t, "jane@example.com", r.Contact.Email)
}

func TestParseResumeCommand_OutputFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "resume.txt", resumeText)
	outFile := filepath.Join(dir, "resume.json")

	out, err := executeCommand(t, "parse-resume", "-i", input, "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Output: "+outFile)

	// the written file must round-trip through the schema-validated reader
	r, err := readResume(outFile)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", r.Contact.Name)
}

func TestParseResumeCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	jsonInput := writeFile(t, dir, "resume.json", resumeJSON)

	_, err := executeCommand(t, "parse-resume", "--in", jsonInput)
	assert.ErrorContains(t, err, "already JSON")

	_, err = executeCommand(t, "parse-resume", "--in", filepath.Join(dir, "missing.txt"))
	assert.ErrorContains(t, err, "file not found")
}

func TestExportCommand_HTML(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.json", resumeJSON)
	outFile := filepath.Join(dir, "resume.html")

	out, err := executeCommand(t, "export", "--resume", resume, "--template", "classic", "--out", outFile, "--html")
	require.NoError(t, err, out)
	assert.Contains(t, out, "classic")

	html, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Jane Doe")
	assert.Contains(t, string(html), "Built dashboards for the sales team")
}

func TestExportCommand_UnknownTemplate(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.json", resumeJSON)

	_, err := executeCommand(t, "export", "--resume", resume, "--template", "fancy", "--out", filepath.Join(dir, "x.pdf"))
	assert.ErrorContains(t, err, "invalid export request")
}

func TestModelCommands_RequireAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.json", resumeJSON)
	jd := writeFile(t, dir, "jd.json", jdJSON)
	job := writeFile(t, dir, "job.txt", "Frontend Engineer. React required.")

	tests := [][]string{
		{"analyze-jd", "--job", job},
		{"rewrite", "--bullet", "Built dashboards", "--jd", jd},
		{"tailor", "--resume", resume, "--jd", jd},
	}

	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			_, err := executeCommand(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "GEMINI_API_KEY")
		})
	}
}

func TestFlagGroups(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.json", resumeJSON)
	jd := writeFile(t, dir, "jd.json", jdJSON)

	_, err := executeCommand(t, "analyze-jd")
	assert.ErrorContains(t, err, "at least one of the flags")

	_, err = executeCommand(t, "tailor", "--resume", resume, "--jd", jd, "--job-url", "https://example.com/job")
	assert.ErrorContains(t, err, "none of the others can be")

	_, err = executeCommand(t, "tailor", "--resume", resume)
	assert.ErrorContains(t, err, "at least one of the flags")
}
