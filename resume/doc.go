// Package resume holds the read-only resume document consumed by the export
// pipeline: structured content, the selected visual template and the color
// scheme each template resolves to.
//
// The editor owns these records. Export code only reads them.
package resume
