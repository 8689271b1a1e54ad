package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	appinvoicing "github.com/nasrosoft/invoice-generator-saas/internal/application/invoicing"
	"github.com/nasrosoft/invoice-generator-saas/internal/infrastructure/config"
)

const defaultRenderTimeout = 30 * time.Second

// ChromedpRenderer renders invoice HTML to PDF through the Chrome
// DevTools Protocol. A single allocator is shared across renders; each
// render gets its own browser context.
type ChromedpRenderer struct {
	engine      *TemplateEngine
	cfg         config.PDFConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a PDF renderer backed by a headless Chrome
// instance.
func NewChromedpRenderer(cfg config.PDFConfig, logger *zap.Logger) (*ChromedpRenderer, error) {
	engine, err := NewTemplateEngine(cfg.TemplateDir)
	if err != nil {
		return nil, err
	}

	if cfg.RenderTimeout == 0 {
		cfg.RenderTimeout = defaultRenderTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("font-render-hinting", "none"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromedpRenderer{
		engine:      engine,
		cfg:         cfg,
		logger:      logger,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Render produces the PDF bytes for an invoice document.
func (r *ChromedpRenderer) Render(ctx context.Context, doc appinvoicing.InvoiceDocument) ([]byte, error) {
	html, err := r.engine.Render(doc)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.RenderTimeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx)
	defer browserCancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(r.cfg.PaperWidth).
				WithPaperHeight(r.cfg.PaperHeight).
				WithMarginTop(r.cfg.MarginInches).
				WithMarginRight(r.cfg.MarginInches).
				WithMarginBottom(r.cfg.MarginInches).
				WithMarginLeft(r.cfg.MarginInches).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("PDF rendering timed out after %v: %w", r.cfg.RenderTimeout, err)
		}
		r.logger.Error("chromedp rendering failed",
			zap.String("invoice_number", doc.InvoiceNumber), zap.Error(err))
		return nil, fmt.Errorf("chromedp execution failed: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("generated PDF is empty")
	}

	r.logger.Debug("Invoice PDF rendered",
		zap.String("invoice_number", doc.InvoiceNumber),
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(startTime)))

	return pdf, nil
}

// Close releases the browser allocator.
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

var _ appinvoicing.InvoiceRenderer = (*ChromedpRenderer)(nil)
