package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
	defaultWaitSelector  = "body"
)

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	// DefaultTimeout for rendering operations
	DefaultTimeout time.Duration
	// RemoteURL is the URL of a remote Chrome/Chromium instance (optional)
	// If empty, chromedp will launch a new browser instance
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Scale for rendering (default: 1.0)
	Scale float64
	// Logger for debug output
	Logger *zap.Logger
}

// ChromedpRenderer renders the print view to PDF using Chrome DevTools Protocol
type ChromedpRenderer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a new chromedp-based PDF renderer
func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	if config.Scale == 0 {
		config.Scale = defaultScale
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer := &ChromedpRenderer{
		config: config,
		logger: logger,
	}
	renderer.initAllocator()

	return renderer, nil
}

func (r *ChromedpRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("font-render-hinting", "none"),
		// dashboard pages are 1940px wide
		chromedp.WindowSize(1940, 1080),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	return opts
}

func (r *ChromedpRenderer) initAllocator() {
	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), r.allocatorOptions()...)
}

// Render loads the print view and prints it. Page sizes come from the
// view's @page rules, so no paper size or margins are forced here.
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "render request is nil", nil)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	if req.BaseURL != "" && !IsAbsoluteHTTPURL(req.BaseURL) {
		return nil, NewRenderError(ErrCodeInvalidHTML,
			fmt.Sprintf("base URL %q is not an absolute http(s) URL", req.BaseURL), nil)
	}
	document := withBaseHref(req.HTML, req.BaseURL)

	startTime := time.Now()

	timeout := req.Timeout
	if timeout == 0 {
		timeout = r.config.DefaultTimeout
	}
	waitSelector := req.WaitSelector
	if waitSelector == "" {
		waitSelector = defaultWaitSelector
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// tie the browser tab to the request deadline
	go func() {
		<-ctx.Done()
		browserCancel()
	}()

	var pdfData []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, document).Do(ctx)
		}),
		chromedp.WaitReady(waitSelector, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := r.printParams().Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}

		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}

	if len(pdfData) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	pageCount := estimatePageCount(pdfData)
	renderDuration := time.Since(startTime)

	r.logger.Info("PDF rendered successfully",
		zap.String("title", req.Title),
		zap.Int("bytes", len(pdfData)),
		zap.Int("pages", pageCount),
		zap.Duration("duration", renderDuration))

	return &RenderResult{
		PDFData:        pdfData,
		PageCount:      pageCount,
		RenderDuration: renderDuration,
	}, nil
}

// IsAbsoluteHTTPURL reports whether raw is an http or https URL with a host
func IsAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// withBaseHref points relative links of the document at baseURL. The
// document is loaded into about:blank, which cannot resolve them itself.
func withBaseHref(document, baseURL string) string {
	if baseURL == "" {
		return document
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	tag := `<base href="` + html.EscapeString(baseURL) + `">`

	lower := strings.ToLower(document)
	for from := 0; ; {
		i := strings.Index(lower[from:], "<head")
		if i < 0 {
			break
		}
		i += from
		rest := lower[i+len("<head"):]
		if rest != "" && (rest[0] == '>' || rest[0] == ' ' || rest[0] == '\n' || rest[0] == '\t') {
			if end := strings.IndexByte(rest, '>'); end >= 0 {
				at := i + len("<head") + end + 1
				return document[:at] + tag + document[at:]
			}
		}
		from = i + len("<head")
	}
	return tag + document
}

func (r *ChromedpRenderer) printParams() *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPreferCSSPageSize(true).
		WithPrintBackground(true).
		WithMarginTop(0).
		WithMarginRight(0).
		WithMarginBottom(0).
		WithMarginLeft(0).
		WithScale(r.config.Scale)
}

// Close releases resources held by the renderer
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// Ensure ChromedpRenderer implements PDFRenderer
var _ PDFRenderer = (*ChromedpRenderer)(nil)
