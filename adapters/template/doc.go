// Package exporttemplate renders resume documents into fixed-width HTML
// surfaces for capture.
//
// Renderer is disabled by default; set Renderer.Enabled to true and supply
// Templates (TemplateExecutor). NewRenderer wires the embedded pongo2
// templates, one per layout: modern.html, professional.html and creative.html.
//
// Every template wraps its content in a root node with id "resume-surface"
// that is exactly 816 CSS px wide. Section headings carry
// data-role="heading" and dividers data-role="divider" so the capture host
// can pad them. Sections without content are left out, heading included.
package exporttemplate
