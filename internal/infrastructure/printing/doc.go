// Package printing renders the dashboard print view.
//
// ViewRenderer turns a composed layout and its client bootstrap into the
// HTML page the browser hydrates. ChromedpRenderer loads that page in
// headless Chrome and prints it to PDF, honouring the per-page @page sizes
// the layout emits.
//
// Example usage:
//
//	view, _ := NewViewRenderer(&ViewConfig{AssetBaseURL: "https://monitor.example.com"})
//	html, err := view.Render(ctx, &ViewData{Layout: layout, Bootstrap: bootstrap})
//	if err != nil {
//	    return err
//	}
//
//	renderer, _ := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	defer renderer.Close()
//	result, err := renderer.Render(ctx, &RenderRequest{HTML: html})
package printing
