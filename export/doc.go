// Package export turns a resume document into a paginated PDF.
//
// The pipeline renders the document into a fixed-width surface, captures a
// detached clone of that surface into a bitmap, maps the bitmap onto pages of
// a single paper size and hands the result to a mode-specific Emitter
// (image-embed or vector-text). Backends for rendering, capture and PDF
// writing live under adapters/.
package export
