// Package exportchromium provides surface hosts that rasterize rendered
// resume surfaces.
//
// Host drives a shared headless Chromium through chromedp. Each Attach opens
// its own tab, loads the surface HTML and mounts a detached clone of the
// surface node below the document fold at a fixed width with scale
// transforms removed. Detach removes the clone and closes the tab.
//
// WKHTMLToImageHost shells out to wkhtmltoimage instead. Attach rewrites the
// surface HTML into a standalone page holding only the surface node, with a
// stylesheet that applies the same width, transform and padding edits as the
// Chromium clone.
package exportchromium
