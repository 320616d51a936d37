package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"sync"

	"github.com/goliatone/go-resume-export/resume"
)

type stubRenderer struct {
	surface RenderedSurface
	err     error
	calls   int
}

func (r *stubRenderer) Render(ctx context.Context, doc resume.Document) (RenderedSurface, error) {
	_ = ctx
	r.calls++
	if r.err != nil {
		return RenderedSurface{}, r.err
	}
	surface := r.surface
	if len(surface.HTML) == 0 {
		surface.HTML = []byte(`<div id="resume-surface">` + doc.Name + `</div>`)
	}
	if surface.Selector == "" {
		surface.Selector = DefaultSurfaceSelector
	}
	surface.Template = doc.Template.Normalize()
	return surface, nil
}

// fakeHost mounts fakeSurfaces and counts live clones.
type fakeHost struct {
	mu        sync.Mutex
	widthPx   float64
	heightPx  float64
	attachErr error
	capErr    error
	detachErr error
	panicOn   bool
	attached  int
	detached  int
	lastCfg   CaptureConfig
}

func (h *fakeHost) Attach(ctx context.Context, surface RenderedSurface, cfg CaptureConfig) (AttachedSurface, error) {
	_ = ctx
	_ = surface
	if h.attachErr != nil {
		return nil, h.attachErr
	}
	h.mu.Lock()
	h.attached++
	h.mu.Unlock()
	return &fakeSurface{host: h}, nil
}

func (h *fakeHost) live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attached - h.detached
}

type fakeSurface struct {
	host *fakeHost
}

func (s *fakeSurface) Bounds(ctx context.Context) (float64, float64, error) {
	_ = ctx
	return s.host.widthPx, s.host.heightPx, nil
}

func (s *fakeSurface) Capture(ctx context.Context, cfg CaptureConfig) (RasterImage, error) {
	_ = ctx
	s.host.lastCfg = cfg
	if s.host.panicOn {
		panic("capture exploded")
	}
	if s.host.capErr != nil {
		return RasterImage{}, s.host.capErr
	}
	w := int(s.host.widthPx * cfg.Oversample)
	h := int(s.host.heightPx * cfg.Oversample)
	return RasterImage{
		Image:      image.NewRGBA(image.Rect(0, 0, w, h)),
		WidthPx:    w,
		HeightPx:   h,
		Oversample: cfg.Oversample,
	}, nil
}

func (s *fakeSurface) Detach(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("detach with canceled context")
	}
	s.host.mu.Lock()
	s.host.detached++
	s.host.mu.Unlock()
	return s.host.detachErr
}

// recordingEmitter writes a marker document and remembers the job.
type recordingEmitter struct {
	jobs     []EmitJob
	err      error
	warnings []Warning
}

func (e *recordingEmitter) Emit(ctx context.Context, job EmitJob, w io.Writer) (EmitStats, error) {
	_ = ctx
	e.jobs = append(e.jobs, job)
	if e.err != nil {
		_, _ = io.WriteString(w, "%PDF-partial")
		return EmitStats{}, e.err
	}
	pages := len(job.Layout.Pages)
	if pages == 0 {
		pages = 1
	}
	n, err := fmt.Fprintf(w, "%%PDF-1.3 %s %d\n%%%%EOF", job.ExportID, pages)
	return EmitStats{Pages: pages, Bytes: int64(n), Warnings: e.warnings}, err
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	errs  []string
}

func (l *recordingLogger) Debugf(string, ...any) {}
func (l *recordingLogger) Infof(string, ...any)  {}
func (l *recordingLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}
func (l *recordingLogger) Errorf(format string, args ...any) {
	l.mu.Lock()
	l.errs = append(l.errs, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

type recordingEvents struct {
	names []string
}

func (r *recordingEvents) Emit(ctx context.Context, evt ChangeEvent) error {
	_ = ctx
	r.names = append(r.names, evt.Name)
	return nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

// letterScenarioDocument has a 500 character summary, one experience entry
// with four highlights and ten skills.
func letterScenarioDocument() resume.Document {
	doc := resume.SampleDocument()
	sentence := "Builds reliable services and mentors teams across product and platform work. "
	summary := strings.Repeat(sentence, 500/len(sentence)+1)
	doc.Content.Summary = summary[:499] + "."
	doc.Content.Experience = doc.Content.Experience[:1]
	doc.Content.Experience[0].Highlights = []string{
		"Led the migration of billing to event driven services",
		"Cut p99 latency of the search API by 45%",
		"Introduced contract tests for partner integrations",
		"Hired and onboarded six engineers",
	}
	doc.Content.Skills = []string{"Go", "PostgreSQL", "Kafka", "Kubernetes", "Terraform", "gRPC", "Redis", "AWS", "Linux", "CI/CD"}
	doc.Content.Certifications = nil
	doc.Content.Languages = nil
	doc.Content.Projects = nil
	return doc
}

func newTestExporter(host *fakeHost, emitter Emitter) *Exporter {
	exporter := NewExporter(&stubRenderer{}, &Rasterizer{Host: host})
	_ = exporter.Emitters.Register(ModeImage, emitter)
	_ = exporter.Emitters.Register(ModeVector, emitter)
	exporter.IDGenerator = func() string { return "exp-1" }
	return exporter
}
