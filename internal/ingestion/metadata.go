package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Sources of ingested text
const (
	SourceFile = "file"
	SourceURL  = "url"
)

// Metadata describes where an ingested text came from
type Metadata struct {
	Source    string `json:"source"`
	URL       string `json:"url,omitempty"`
	Path      string `json:"path,omitempty"`
	Format    string `json:"format,omitempty"`
	Platform  string `json:"platform,omitempty"` // job board, for URLs
	Timestamp string `json:"timestamp"`          // RFC3339
	Hash      string `json:"hash"`               // SHA-256 of the cleaned text
	FromCache bool   `json:"fromCache,omitempty"`
}

// NewMetadata stamps cleaned content from source with the current time and its hash.
func NewMetadata(source, content string) *Metadata {
	return &Metadata{
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
