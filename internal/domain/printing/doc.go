// Package printing turns a dashboard snapshot into paged print geometry.
//
// PageContentHeight sizes a single page from its widget extents and Compose
// partitions a whole dashboard into named print pages (page_1 ... page_N),
// each with a fixed width and an independently computed height. Both are
// pure functions of the snapshot and the Constants value; rendering lives in
// the infrastructure layer.
package printing
