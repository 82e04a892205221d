package printing

import "github.com/dashprint/backend/internal/domain/dashboard"

// PageContentHeight returns the pixel height needed to show every widget of
// a page: the deepest widget extent times the row height, plus content
// padding. Geometry is trusted as delivered by the snapshot provider.
func PageContentHeight(widgets []dashboard.Widget, c Constants) int {
	return dashboard.Page{Widgets: widgets}.ContentRows()*c.RowHeight + c.ContentPadding
}
