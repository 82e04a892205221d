package printing

import (
	"bytes"
	"context"
	"time"
)

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	// HTML content to render
	HTML string
	// BaseURL resolves the relative asset links of HTML. It must be an
	// absolute http(s) URL when set.
	BaseURL string
	// Title for the PDF document metadata
	Title string
	// WaitSelector is awaited before printing; defaults to "body"
	WaitSelector string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for rendering HTML to PDF
type PDFRenderer interface {
	// Render converts HTML content to a PDF document
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during view or PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
	ErrCodeStorageFailed = "STORAGE_FAILED"
	ErrCodeStorageOff    = "STORAGE_DISABLED"
	ErrCodeDisabled      = "RENDERER_DISABLED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// estimatePageCount counts page objects in a PDF
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	// "/Type /Pages" also matches the prefix above
	count -= bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}

// DisabledRenderer is used when no browser is configured
type DisabledRenderer struct{}

// Render always fails with ErrCodeDisabled
func (DisabledRenderer) Render(context.Context, *RenderRequest) (*RenderResult, error) {
	return nil, NewRenderError(ErrCodeDisabled, "PDF rendering is not enabled", nil)
}

// Close is a no-op
func (DisabledRenderer) Close() error { return nil }

var _ PDFRenderer = DisabledRenderer{}
