package ingestion

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// IngestFromFile reads a text, PDF or DOCX file and returns its cleaned text.
func IngestFromFile(path string) (string, *Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	format := DetectFormat(path, data)
	text, err := ExtractDocumentText(format, data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract text from %s: %w", path, err)
	}

	meta := NewMetadata(SourceFile, text)
	meta.Path = path
	meta.Format = format
	return text, meta, nil
}

// Ingest reads source as a URL when it has an http(s) scheme and as a file
// path otherwise.
func Ingest(ctx context.Context, source string, opts URLOptions) (string, *Metadata, error) {
	if IsURL(source) {
		return IngestFromURL(ctx, source, opts)
	}
	return IngestFromFile(source)
}

// IsURL reports whether s looks like an http(s) URL.
func IsURL(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
