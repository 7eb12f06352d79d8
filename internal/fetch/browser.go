package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the shortest extracted text treated as a real posting.
// Shorter pages are usually client-rendered and need a browser.
const MinContentLength = 500

// settleTimeout bounds the wait for client-side rendering to fill the page.
const settleTimeout = 5 * time.Second

// NeedsBrowser reports whether extracted text is too short to be the posting.
func NeedsBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// browserOptions run Chrome headless in containers without a GPU or a large /dev/shm.
func browserOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(DefaultUserAgent),
	)
}

// Render loads urlStr in headless Chrome and returns the rendered HTML once
// the page shows at least MinContentLength characters of text, or after
// settleTimeout, whichever comes first. Chrome or Chromium must be installed.
func Render(ctx context.Context, urlStr string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	start := time.Now()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, browserOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	browserCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(urlStr), chromedp.WaitReady("body")); err != nil {
		return "", &Error{URL: urlStr, Message: "browser could not load page", Cause: err}
	}

	var settled bool
	poll := fmt.Sprintf("document.body.innerText.trim().length >= %d", MinContentLength)
	if err := chromedp.Run(browserCtx, chromedp.Poll(poll, &settled, chromedp.WithPollingTimeout(settleTimeout))); err != nil {
		// a short page is still worth extracting
		slog.Debug("page text stayed short", slog.String("url", urlStr), slog.Any("error", err))
	}

	var html string
	if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", &Error{URL: urlStr, Message: "browser could not read page", Cause: err}
	}

	slog.Debug("rendered page in browser",
		slog.String("url", urlStr),
		slog.Int("bytes", len(html)),
		slog.Bool("settled", settled),
		slog.Duration("elapsed", time.Since(start)))
	return html, nil
}
