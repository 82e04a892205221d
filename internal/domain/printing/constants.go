package printing

import "github.com/dashprint/backend/internal/domain/shared"

// Default print geometry, in pixels
const (
	DefaultRowHeight       = 70
	DefaultContentPadding  = 12
	DefaultPageTitleHeight = 50
	DefaultHeaderHeight    = 60
	DefaultPageMargin      = 10
	DefaultPageWidth       = 1940
)

// Constants holds the fixed geometry used to size print pages.
// It is passed by value and never mutated.
type Constants struct {
	RowHeight       int `json:"row_height"`        // pixels per grid row
	ContentPadding  int `json:"content_padding"`   // added below the lowest widget
	PageTitleHeight int `json:"page_title_height"` // per-page title band, multi-page only
	HeaderHeight    int `json:"header_height"`     // dashboard name band, first page only
	PageMargin      int `json:"page_margin"`
	PageWidth       int `json:"page_width"`
}

// DefaultConstants returns the stock print geometry
func DefaultConstants() Constants {
	return Constants{
		RowHeight:       DefaultRowHeight,
		ContentPadding:  DefaultContentPadding,
		PageTitleHeight: DefaultPageTitleHeight,
		HeaderHeight:    DefaultHeaderHeight,
		PageMargin:      DefaultPageMargin,
		PageWidth:       DefaultPageWidth,
	}
}

// NewConstants creates a validated Constants value
func NewConstants(rowHeight, contentPadding, pageTitleHeight, headerHeight, pageMargin, pageWidth int) (Constants, error) {
	c := Constants{
		RowHeight:       rowHeight,
		ContentPadding:  contentPadding,
		PageTitleHeight: pageTitleHeight,
		HeaderHeight:    headerHeight,
		PageMargin:      pageMargin,
		PageWidth:       pageWidth,
	}
	if err := c.Validate(); err != nil {
		return Constants{}, err
	}
	return c, nil
}

// Validate checks the geometry is usable
func (c Constants) Validate() error {
	if c.RowHeight <= 0 {
		return shared.NewDomainError("INVALID_PRINT_CONSTANTS", "Row height must be positive")
	}
	if c.PageWidth <= 0 {
		return shared.NewDomainError("INVALID_PRINT_CONSTANTS", "Page width must be positive")
	}
	if c.ContentPadding < 0 || c.PageTitleHeight < 0 || c.HeaderHeight < 0 || c.PageMargin < 0 {
		return shared.NewDomainError("INVALID_PRINT_CONSTANTS", "Padding, margins and band heights cannot be negative")
	}
	return nil
}
