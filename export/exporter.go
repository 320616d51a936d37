package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-resume-export/resume"
)

// Exporter orchestrates a single resume export: render, capture, paginate, emit.
type Exporter struct {
	Renderer    SurfaceRenderer
	Capture     SurfaceCapture
	Emitters    *EmitterRegistry
	Defaults    Options
	Logger      Logger
	Warnings    WarningSink
	Events      ChangeEmitter
	Metrics     MetricsHook
	Now         func() time.Time
	IDGenerator func() string
}

// NewExporter creates an exporter with an empty emitter registry.
func NewExporter(renderer SurfaceRenderer, capture SurfaceCapture) *Exporter {
	return &Exporter{
		Renderer:    renderer,
		Capture:     capture,
		Emitters:    NewEmitterRegistry(),
		Logger:      NopLogger{},
		Now:         time.Now,
		IDGenerator: defaultIDGenerator,
	}
}

// Export produces a PDF for req.Document and writes it to req.Output.
// Nothing is written to req.Output unless the whole PDF was produced.
func (e *Exporter) Export(ctx context.Context, req Request) (Result, error) {
	if e == nil {
		return Result{}, AsGoError(NewError(KindInternal, "exporter is nil", nil))
	}
	if e.Emitters == nil {
		return Result{}, AsGoError(NewError(KindInternal, "emitter registry is not configured", nil))
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.Logger == nil {
		e.Logger = NopLogger{}
	}
	if e.IDGenerator == nil {
		e.IDGenerator = defaultIDGenerator
	}
	if req.Output == nil {
		return Result{}, AsGoError(NewError(KindValidation, "output writer is required", nil))
	}

	doc := req.Document
	if err := resume.Validate(doc); err != nil {
		return Result{}, AsGoError(err)
	}

	resolved, err := ResolveOptions(MergeOptions(e.Defaults, req.Options), doc)
	if err != nil {
		return Result{}, AsGoError(err)
	}
	colors, err := resume.ResolveColors(doc.Template)
	if err != nil {
		return Result{}, AsGoError(err)
	}
	filename, err := RenderFilename(doc, resolved)
	if err != nil {
		return Result{}, AsGoError(err)
	}
	emitter, ok := e.Emitters.Resolve(resolved.Mode)
	if !ok {
		return Result{}, AsGoError(NewError(KindNotImpl, fmt.Sprintf("no emitter registered for mode %q", resolved.Mode), nil))
	}

	exportID := req.ID
	if exportID == "" {
		exportID = e.IDGenerator()
	}
	run := runInfo{
		exportID:  exportID,
		doc:       doc,
		resolved:  resolved,
		filename:  filename,
		startedAt: e.Now(),
	}
	e.emit(ctx, run, "export.requested", nil)
	e.emitMetrics(ctx, run, "export.requested", EmitStats{}, 0, nil)

	job := EmitJob{
		ExportID:  exportID,
		Document:  doc,
		Colors:    colors,
		Options:   resolved,
		CreatedAt: resolved.CreatedAt,
	}

	var warnings []Warning
	if resolved.Mode == ModeImage {
		raster, layout, captureWarnings, err := e.rasterize(ctx, doc, resolved)
		if err != nil {
			e.fail(ctx, run, err)
			return Result{}, AsGoError(err)
		}
		job.Raster = raster
		job.Layout = layout
		warnings = append(warnings, captureWarnings...)
	}

	var buf bytes.Buffer
	stats, err := emitter.Emit(ctx, job, &buf)
	if err != nil {
		err = ExportFailure("emit pdf", err)
		e.fail(ctx, run, err)
		return Result{}, AsGoError(err)
	}
	warnings = append(warnings, stats.Warnings...)
	if resolved.Mode == ModeVector && stats.Pages > 1 {
		warnings = append(warnings, Warning{
			Code:    WarningVectorPageBreak,
			Message: fmt.Sprintf("text output continued over %d pages", stats.Pages),
			Meta:    map[string]any{"pages": stats.Pages},
		})
	}
	for _, warning := range warnings {
		e.warn(ctx, exportID, warning)
	}

	written, err := io.Copy(req.Output, &buf)
	if err != nil {
		err = ExportFailure("write pdf", err)
		e.fail(ctx, run, err)
		return Result{}, AsGoError(err)
	}
	stats.Bytes = written

	result := Result{
		ID:       exportID,
		Filename: filename,
		Mode:     resolved.Mode,
		PageSize: resolved.Page.Name,
		Pages:    stats.Pages,
		Bytes:    stats.Bytes,
		Layout:   job.Layout,
		Warnings: warnings,
	}

	e.emit(ctx, run, "export.completed", map[string]any{
		"pages":    stats.Pages,
		"bytes":    stats.Bytes,
		"warnings": len(warnings),
		"duration": e.Now().Sub(run.startedAt),
	})
	e.emitMetrics(ctx, run, "export.completed", stats, len(warnings), nil)
	e.Logger.Infof("export %s wrote %s (%d pages, %d bytes)", exportID, filename, stats.Pages, stats.Bytes)

	return result, nil
}

func (e *Exporter) rasterize(ctx context.Context, doc resume.Document, resolved ResolvedOptions) (RasterImage, Layout, []Warning, error) {
	if e.Renderer == nil {
		return RasterImage{}, Layout{}, nil, NewError(KindNotImpl, "surface renderer not configured", nil)
	}
	if e.Capture == nil {
		return RasterImage{}, Layout{}, nil, NewError(KindNotImpl, "surface capture not configured", nil)
	}

	surface, err := e.Renderer.Render(ctx, doc)
	if err != nil {
		return RasterImage{}, Layout{}, nil, CaptureFailure("render surface", err)
	}
	cfg := resolved.CaptureConfig(surface)

	raster, err := e.Capture.Capture(ctx, surface, cfg)
	if err != nil {
		return RasterImage{}, Layout{}, nil, CaptureFailure("capture surface", err)
	}

	var warnings []Warning
	if raster.Oversample > 0 && raster.Oversample < cfg.Oversample {
		warnings = append(warnings, Warning{
			Code:    WarningRasterDownscaled,
			Message: fmt.Sprintf("oversample lowered from %.2f to %.2f", cfg.Oversample, raster.Oversample),
			Meta: map[string]any{
				"requested": cfg.Oversample,
				"applied":   raster.Oversample,
				"max_px":    cfg.MaxHeightPx,
			},
		})
	}

	layout, err := Paginator{Page: resolved.Page, Policy: resolved.Overflow}.Paginate(raster.WidthPx, raster.HeightPx)
	if err != nil {
		return RasterImage{}, Layout{}, nil, CaptureFailure("paginate raster", err)
	}
	if layout.Overflow {
		warnings = append(warnings, ContentOverflowWarning(layout.ScaledHeightMM, layout.Page.HeightMM))
	}
	return raster, layout, warnings, nil
}

func (e *Exporter) warn(ctx context.Context, exportID string, warning Warning) {
	e.Logger.Warnf("export %s: %s (%s)", exportID, warning.Message, warning.Code)
	if e.Warnings != nil {
		e.Warnings.Warn(ctx, exportID, warning)
	}
}

func (e *Exporter) fail(ctx context.Context, run runInfo, err error) {
	name := "export.failed"
	if errors.Is(err, context.Canceled) {
		name = "export.canceled"
	}
	e.Logger.Errorf("export %s failed: %v", run.exportID, err)
	e.emit(ctx, run, name, map[string]any{
		"error":      err.Error(),
		"error_kind": KindFromError(err),
		"duration":   e.Now().Sub(run.startedAt),
	})
	e.emitMetrics(ctx, run, name, EmitStats{}, 0, err)
}

func (e *Exporter) emit(ctx context.Context, run runInfo, name string, meta map[string]any) {
	if e.Events == nil {
		return
	}
	_ = e.Events.Emit(ctx, ChangeEvent{
		Name:      name,
		ExportID:  run.exportID,
		ResumeID:  run.doc.ID,
		Template:  run.doc.Template.Normalize(),
		Mode:      run.resolved.Mode,
		Timestamp: e.Now(),
		Metadata:  mergeMetadata(run.baseMetadata(), meta),
	})
}

func (e *Exporter) emitMetrics(ctx context.Context, run runInfo, name string, stats EmitStats, warnings int, err error) {
	if e.Metrics == nil {
		return
	}
	now := e.Now()
	kind := ErrorKind("")
	if err != nil {
		kind = KindFromError(err)
	}
	_ = e.Metrics.Emit(ctx, MetricsEvent{
		Name:      name,
		ExportID:  run.exportID,
		Mode:      run.resolved.Mode,
		PageSize:  run.resolved.Page.Name,
		Pages:     stats.Pages,
		Bytes:     stats.Bytes,
		Warnings:  warnings,
		Duration:  now.Sub(run.startedAt),
		ErrorKind: kind,
		Timestamp: now,
	})
}

type runInfo struct {
	exportID  string
	doc       resume.Document
	resolved  ResolvedOptions
	filename  string
	startedAt time.Time
}

func (r runInfo) baseMetadata() map[string]any {
	return map[string]any{
		"filename":   r.filename,
		"page_size":  r.resolved.Page.Name,
		"oversample": r.resolved.Oversample,
		"overflow":   r.resolved.Overflow,
	}
}

func mergeMetadata(base, extra map[string]any) map[string]any {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	merged := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

func defaultIDGenerator() string {
	return uuid.NewString()
}
