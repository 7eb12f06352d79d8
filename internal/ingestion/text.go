// Package ingestion reads resumes and job postings from files, documents and URLs
// into clean plain text.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerSpace  = regexp.MustCompile(`\s+`)
	blankRuns   = regexp.MustCompile(`\n\n\n+`)
	bulletGlyph = regexp.MustCompile(`^[•·▪◦▸●]\s*`)
)

// CleanText normalizes line endings and whitespace while keeping the
// structure a parser relies on: headings, bullets, indentation and at most
// one blank line between blocks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	// markdown headings lose their indentation
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := strings.Repeat(" ", len(line)-len(trimmed))

	// bullet glyphs from word processors become markdown bullets
	if bulletGlyph.MatchString(trimmed) {
		return indent + "- " + innerSpace.ReplaceAllString(bulletGlyph.ReplaceAllString(trimmed, ""), " ")
	}
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return indent + trimmed[:2] + innerSpace.ReplaceAllString(trimmed[2:], " ")
	}

	return indent + innerSpace.ReplaceAllString(trimmed, " ")
}
