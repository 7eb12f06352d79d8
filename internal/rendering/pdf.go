package rendering

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/ledongthuc/pdf"
)

// A4 in inches, as Chrome's print API expects
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	marginInches   = 0.5
)

// DefaultPDFTimeout bounds one headless Chrome render
const DefaultPDFTimeout = 30 * time.Second

// PDFRenderer converts a rendered HTML document into PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromePDF prints HTML through headless Chrome. Each call starts a fresh
// browser, so a ChromePDF is safe for concurrent use.
type ChromePDF struct {
	Timeout time.Duration
	// ExecPath overrides the Chrome binary; empty uses chromedp's lookup
	ExecPath string
}

// RenderPDF prints html as an A4 page with backgrounds and 0.5in margins.
func (c ChromePDF) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	browserCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	start := time.Now()
	var out []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithMarginTop(marginInches).
				WithMarginBottom(marginInches).
				WithMarginLeft(marginInches).
				WithMarginRight(marginInches).
				Do(ctx)
			out = buf
			return err
		}),
	)
	if err != nil {
		return nil, &RenderError{Stage: "print", Message: "chrome could not print the page", Cause: err}
	}

	slog.Debug("rendered PDF", slog.Int("bytes", len(out)), slog.Duration("elapsed", time.Since(start)))
	return out, nil
}

// ExportPDF renders r with the named template and prints it.
func ExportPDF(ctx context.Context, renderer PDFRenderer, r *types.Resume, templateName string) ([]byte, error) {
	html, err := RenderHTML(r, templateName)
	if err != nil {
		return nil, err
	}
	return renderer.RenderPDF(ctx, html)
}

// PageCount returns the number of pages in a PDF document.
func PageCount(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to read pdf: %w", err)
	}
	return reader.NumPage(), nil
}
