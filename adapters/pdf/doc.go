// Package exportpdf provides gofpdf-backed PDF emitters for resume exports.
//
// ImageEmitter embeds the captured bitmap, one page per placement computed by
// the paginator. VectorEmitter writes selectable text runs instead, starting
// new pages through a layout cursor. Both emit documents with a fixed creation
// date and sorted catalog so identical inputs produce identical bytes.
package exportpdf
