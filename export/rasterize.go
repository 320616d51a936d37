package export

import (
	"context"
	"fmt"
	"math"
)

// Rasterizer captures surfaces through a SurfaceHost. Every capture runs
// inside an attach/detach scope so the off-screen clone never outlives it.
type Rasterizer struct {
	Host   SurfaceHost
	Logger Logger
}

var _ SurfaceCapture = (*Rasterizer)(nil)

// Capture attaches a detached clone of surface, rasterizes it and detaches it.
func (r *Rasterizer) Capture(ctx context.Context, surface RenderedSurface, cfg CaptureConfig) (raster RasterImage, err error) {
	if r == nil || r.Host == nil {
		return RasterImage{}, NewError(KindNotImpl, "surface host not configured", nil)
	}
	if len(surface.HTML) == 0 {
		return RasterImage{}, CaptureFailure("surface is empty", nil)
	}
	if cfg.Oversample == 0 {
		cfg.Oversample = DefaultOversample
	}
	if cfg.Oversample < MinOversample {
		return RasterImage{}, NewError(KindValidation, fmt.Sprintf("oversample must be at least %.0f", MinOversample), nil)
	}
	if cfg.WidthPx <= 0 {
		cfg.WidthPx = surface.WidthPx
	}
	if cfg.WidthPx <= 0 {
		cfg.WidthPx = CanonicalWidthPx
	}
	logger := r.logger()

	attached, err := r.Host.Attach(ctx, surface, cfg)
	if err != nil {
		return RasterImage{}, CaptureFailure("attach surface", err)
	}
	if attached == nil {
		return RasterImage{}, CaptureFailure("surface not found", nil)
	}
	defer func() {
		detachErr := attached.Detach(context.WithoutCancel(ctx))
		if detachErr == nil {
			return
		}
		logger.Errorf("detach surface %s: %v", surface.Selector, detachErr)
		if err == nil {
			raster = RasterImage{}
			err = CaptureFailure("detach surface", detachErr)
		}
	}()

	width, height, err := attached.Bounds(ctx)
	if err != nil {
		return RasterImage{}, CaptureFailure("measure surface", err)
	}
	if width <= 0 || height <= 0 {
		return RasterImage{}, CaptureFailure(fmt.Sprintf("surface has no area (%.0fx%.0f)", width, height), nil)
	}

	if lowered, ok := capOversample(height, cfg.Oversample, cfg.MaxHeightPx); ok {
		logger.Warnf("surface height %.0fpx exceeds raster cap %dpx, oversample lowered from %.2f to %.2f",
			height, cfg.MaxHeightPx, cfg.Oversample, lowered)
		cfg.Oversample = lowered
	}

	raster, err = attached.Capture(ctx, cfg)
	if err != nil {
		return RasterImage{}, CaptureFailure("capture surface", err)
	}
	if raster.Image != nil && (raster.WidthPx == 0 || raster.HeightPx == 0) {
		bounds := raster.Image.Bounds()
		raster.WidthPx, raster.HeightPx = bounds.Dx(), bounds.Dy()
	}
	if raster.WidthPx <= 0 || raster.HeightPx <= 0 {
		return RasterImage{}, CaptureFailure("capture produced an empty bitmap", nil)
	}
	if raster.Oversample == 0 {
		raster.Oversample = cfg.Oversample
	}
	logger.Debugf("captured %s at %dx%dpx (oversample %.2f)", surface.Selector, raster.WidthPx, raster.HeightPx, raster.Oversample)
	return raster, nil
}

func (r *Rasterizer) logger() Logger {
	if r.Logger == nil {
		return NopLogger{}
	}
	return r.Logger
}

// capOversample lowers oversample so heightPx*oversample stays within maxPx,
// never going below MinOversample.
func capOversample(heightPx, oversample float64, maxPx int) (float64, bool) {
	if maxPx <= 0 || heightPx*oversample <= float64(maxPx) {
		return oversample, false
	}
	lowered := math.Max(MinOversample, math.Floor(float64(maxPx)/heightPx*100)/100)
	if lowered >= oversample {
		return oversample, false
	}
	return lowered, true
}
