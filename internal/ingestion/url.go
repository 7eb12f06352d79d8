package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/resume-tailor/internal/fetch"
)

var (
	// ErrInvalidURL is returned when a URL is malformed
	ErrInvalidURL = errors.New("invalid URL")
	// ErrHTTPRequestFailed is returned when a page cannot be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when a page yields no text
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions configures IngestFromURL.
type URLOptions struct {
	Fetcher        *fetch.CachedFetcher // nil fetches without caching
	UseBrowser     bool                 // render client-side pages in headless Chrome
	BrowserTimeout time.Duration
}

// IngestFromURL fetches a job posting page and returns its cleaned main text.
// Board-specific selectors are used for known platforms. With UseBrowser set,
// pages that yield too little text are rendered in a browser and re-read.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	if err := fetch.ValidateURL(urlStr); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	platform := fetch.DetectPlatform(urlStr)
	logger := slog.With(slog.String("url", urlStr), slog.String("platform", string(platform)))

	var (
		result    *fetch.Result
		fromCache bool
		err       error
	)
	if opts.Fetcher != nil {
		result, fromCache, err = opts.Fetcher.Fetch(ctx, urlStr)
	} else {
		result, err = fetch.URL(ctx, urlStr, nil)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	logger.Debug("fetched job posting", slog.Int("bytes", len(result.HTML)), slog.Bool("cached", fromCache))

	content, noise := fetch.SelectorsFor(urlStr)
	text, err := fetch.ExtractMainText(result.HTML, content, noise...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if opts.UseBrowser && fetch.NeedsBrowser(text) {
		logger.Info("page text too short, rendering in browser", slog.Int("chars", len(text)))
		html, renderErr := fetch.Render(ctx, urlStr, opts.BrowserTimeout)
		if renderErr != nil {
			logger.Warn("browser rendering failed, using fetched page", slog.Any("error", renderErr))
		} else if rendered, extractErr := fetch.ExtractMainText(html, content, noise...); extractErr == nil {
			text = rendered
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w: page has no readable text", ErrContentExtractionFailed)
	}

	meta := NewMetadata(SourceURL, cleaned)
	meta.URL = urlStr
	meta.Platform = string(platform)
	meta.Format = "text/html"
	meta.FromCache = fromCache
	return cleaned, meta, nil
}
