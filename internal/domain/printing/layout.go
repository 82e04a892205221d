package printing

import (
	"fmt"
	"strings"

	"github.com/dashprint/backend/internal/domain/dashboard"
)

// HeaderClass is the class list of the dashboard header block. The header
// always lives on the first page.
const HeaderClass = "header-title page_1"

// PageTitler produces the fallback title of an unnamed page (1-based)
type PageTitler interface {
	PageTitle(number int) string
}

// PageTitlerFunc adapts a function to PageTitler
type PageTitlerFunc func(number int) string

// PageTitle implements PageTitler
func (f PageTitlerFunc) PageTitle(number int) string {
	return f(number)
}

// DefaultPageTitler renders "Page N"
var DefaultPageTitler PageTitler = PageTitlerFunc(func(number int) string {
	return fmt.Sprintf("Page %d", number)
})

// Header is the dashboard title band
type Header struct {
	Title string `json:"title"`
	Class string `json:"class"`
}

// PageDescriptor binds a named print page to its size in pixels
type PageDescriptor struct {
	Name   string `json:"page_name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CSS renders the paged-media rule for the page and the class binding that
// assigns elements to it.
func (d PageDescriptor) CSS() string {
	return fmt.Sprintf("@page %s { size: %dpx %dpx; } .%s { page: %s; } ", d.Name, d.Width, d.Height, d.Name, d.Name)
}

// PageContainer is the placeholder the client fills with the page's widgets
type PageContainer struct {
	Number    int    `json:"number"`
	PageName  string `json:"page_name"`
	Title     string `json:"title,omitempty"`
	ShowTitle bool   `json:"show_title"`
}

// Class returns the container's class list
func (c PageContainer) Class() string {
	return "dashboard-page " + c.PageName
}

// Layout is the full paged description of a dashboard
type Layout struct {
	Header      Header           `json:"header"`
	Descriptors []PageDescriptor `json:"descriptors"`
	Containers  []PageContainer  `json:"containers"`
}

// Styles concatenates the CSS of every descriptor
func (l *Layout) Styles() string {
	var sb strings.Builder
	for _, d := range l.Descriptors {
		sb.WriteString(d.CSS())
	}
	return sb.String()
}

// PageName returns the print page name for a 1-based page number
func PageName(number int) string {
	return fmt.Sprintf("page_%d", number)
}

// Compose partitions a dashboard into print pages and sizes each of them.
//
// With several pages every page carries its own title band and the first
// page additionally carries the dashboard header. A single-page dashboard
// only carries the header, the dashboard name serving as its title.
func Compose(d *dashboard.Dashboard, c Constants, titles PageTitler) *Layout {
	if titles == nil {
		titles = DefaultPageTitler
	}

	layout := &Layout{
		Header:      Header{Class: HeaderClass},
		Descriptors: []PageDescriptor{},
		Containers:  []PageContainer{},
	}
	if d == nil {
		return layout
	}
	layout.Header.Title = d.Name

	count := len(d.Pages)
	if count == 0 {
		return layout
	}

	layout.Descriptors = make([]PageDescriptor, 0, count)
	layout.Containers = make([]PageContainer, 0, count)

	for i, page := range d.Pages {
		number := i + 1
		name := PageName(number)
		height := PageContentHeight(page.Widgets, c) + c.PageMargin
		container := PageContainer{Number: number, PageName: name}

		if count > 1 {
			height += c.PageTitleHeight
			if i == 0 {
				height += c.HeaderHeight
			}
			container.ShowTitle = true
			container.Title = page.Name
			if container.Title == "" {
				container.Title = titles.PageTitle(number)
			}
		} else {
			height += c.HeaderHeight
		}

		layout.Descriptors = append(layout.Descriptors, PageDescriptor{
			Name:   name,
			Width:  c.PageWidth,
			Height: height,
		})
		layout.Containers = append(layout.Containers, container)
	}

	return layout
}
