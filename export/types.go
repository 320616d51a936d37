package export

import (
	"context"
	"image"
	"io"
	"time"

	"github.com/goliatone/go-resume-export/resume"
)

// Mode selects the PDF emission strategy.
type Mode string

const (
	ModeImage  Mode = "image"
	ModeVector Mode = "vector"
)

// OverflowPolicy decides what happens when a bitmap is taller than one page.
type OverflowPolicy string

const (
	// OverflowClip keeps a single page and drops content below it.
	OverflowClip OverflowPolicy = "clip"
	// OverflowSplit slices the bitmap across as many pages as needed.
	OverflowSplit OverflowPolicy = "split"
)

// Options configures a single export.
type Options struct {
	PageSize               string         `json:"pageSize,omitempty"`
	Oversample             float64        `json:"oversample,omitempty"`
	Mode                   Mode           `json:"mode,omitempty"`
	Overflow               OverflowPolicy `json:"overflow,omitempty"`
	AppendTemplate         bool           `json:"appendTemplate,omitempty"`
	FilenameTemplate       string         `json:"filenameTemplate,omitempty"`
	Background             string         `json:"background,omitempty"`
	AllowExternalResources *bool          `json:"allowExternalResources,omitempty"`
	MaxRasterHeightPx      int            `json:"maxRasterHeightPx,omitempty"`
	Margin                 string         `json:"margin,omitempty"`
	CreatedAt              time.Time      `json:"createdAt,omitempty"`
}

// ResolvedOptions are Options with defaults applied and the page size looked up.
type ResolvedOptions struct {
	Options
	Page     PageSize
	MarginMM float64
}

// Request describes one export call.
type Request struct {
	ID       string
	Document resume.Document
	Options  Options
	Output   io.Writer
}

// Result describes a completed export.
type Result struct {
	ID       string
	Filename string
	Mode     Mode
	PageSize string
	Pages    int
	Bytes    int64
	Layout   Layout
	Warnings []Warning
}

// RenderedSurface is a laid-out, fixed-width HTML rendition of a document.
type RenderedSurface struct {
	HTML       []byte
	Selector   string
	WidthPx    int
	Background string
	Template   resume.TemplateID
}

// CaptureConfig controls rasterization of a surface.
type CaptureConfig struct {
	Oversample             float64
	Background             string
	AllowExternalResources bool
	WidthPx                int
	HeadingPaddingPx       float64
	FollowingPaddingPx     float64
	MaxHeightPx            int
}

// RasterImage is a bitmap captured from a surface.
type RasterImage struct {
	Image      image.Image
	WidthPx    int
	HeightPx   int
	Oversample float64
}

// PhysicalSize returns the image size in millimeters when scaled to pageWidthMM.
func (r RasterImage) PhysicalSize(pageWidthMM float64) (float64, float64) {
	if r.WidthPx <= 0 {
		return 0, 0
	}
	return pageWidthMM, pageWidthMM * float64(r.HeightPx) / float64(r.WidthPx)
}

// SurfaceRenderer renders a document into a surface.
type SurfaceRenderer interface {
	Render(ctx context.Context, doc resume.Document) (RenderedSurface, error)
}

// SurfaceHost mounts detached copies of surfaces for capture.
type SurfaceHost interface {
	Attach(ctx context.Context, surface RenderedSurface, cfg CaptureConfig) (AttachedSurface, error)
}

// AttachedSurface is a mounted off-screen clone. Detach must always be called.
type AttachedSurface interface {
	Bounds(ctx context.Context) (width, height float64, err error)
	Capture(ctx context.Context, cfg CaptureConfig) (RasterImage, error)
	Detach(ctx context.Context) error
}

// SurfaceCapture converts a surface into a bitmap.
type SurfaceCapture interface {
	Capture(ctx context.Context, surface RenderedSurface, cfg CaptureConfig) (RasterImage, error)
}

// EmitJob carries everything an Emitter needs to write a PDF.
type EmitJob struct {
	ExportID  string
	Document  resume.Document
	Colors    resume.ColorScheme
	Options   ResolvedOptions
	Layout    Layout
	Raster    RasterImage
	CreatedAt time.Time
}

// EmitStats capture emitter output.
type EmitStats struct {
	Pages    int
	Bytes    int64
	Warnings []Warning
}

// Emitter serializes a PDF for one mode.
type Emitter interface {
	Emit(ctx context.Context, job EmitJob, w io.Writer) (EmitStats, error)
}

// EmitterFunc adapts a function to an Emitter.
type EmitterFunc func(ctx context.Context, job EmitJob, w io.Writer) (EmitStats, error)

func (f EmitterFunc) Emit(ctx context.Context, job EmitJob, w io.Writer) (EmitStats, error) {
	if f == nil {
		return EmitStats{}, NewError(KindInternal, "emitter func is nil", nil)
	}
	return f(ctx, job, w)
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// ChangeEvent describes lifecycle events.
type ChangeEvent struct {
	Name      string
	ExportID  string
	ResumeID  string
	Template  resume.TemplateID
	Mode      Mode
	Timestamp time.Time
	Metadata  map[string]any
}

// ChangeEmitter emits lifecycle events.
type ChangeEmitter interface {
	Emit(ctx context.Context, evt ChangeEvent) error
}

// MetricsEvent describes lifecycle metrics.
type MetricsEvent struct {
	Name      string
	ExportID  string
	Mode      Mode
	PageSize  string
	Pages     int
	Bytes     int64
	Warnings  int
	Duration  time.Duration
	ErrorKind ErrorKind
	Timestamp time.Time
}

// MetricsHook emits metrics-friendly lifecycle observations.
type MetricsHook interface {
	Emit(ctx context.Context, evt MetricsEvent) error
}
