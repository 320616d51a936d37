package export

import (
	"context"
	"errors"
	"testing"
)

func testSurface() RenderedSurface {
	return RenderedSurface{HTML: []byte(`<div id="resume-surface"></div>`), Selector: DefaultSurfaceSelector, WidthPx: CanonicalWidthPx}
}

func TestRasterizer_DetachesAfterSuccess(t *testing.T) {
	host := &fakeHost{widthPx: 816, heightPx: 1056}
	raster, err := (&Rasterizer{Host: host}).Capture(context.Background(), testSurface(), CaptureConfig{Oversample: 3})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if raster.WidthPx != 2448 || raster.HeightPx != 3168 {
		t.Fatalf("unexpected raster size %dx%d", raster.WidthPx, raster.HeightPx)
	}
	if host.attached != 1 || host.live() != 0 {
		t.Fatalf("expected clone detached, attached=%d live=%d", host.attached, host.live())
	}
}

func TestRasterizer_DetachesAfterCaptureFailure(t *testing.T) {
	host := &fakeHost{widthPx: 816, heightPx: 1056, capErr: errors.New("gpu lost")}
	_, err := (&Rasterizer{Host: host}).Capture(context.Background(), testSurface(), CaptureConfig{})
	if !IsCaptureFailure(err) {
		t.Fatalf("expected capture failure, got %v", err)
	}
	if host.live() != 0 {
		t.Fatalf("expected no live clones, got %d", host.live())
	}
}

func TestRasterizer_DetachesOnPanic(t *testing.T) {
	host := &fakeHost{widthPx: 816, heightPx: 1056, panicOn: true}
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_, _ = (&Rasterizer{Host: host}).Capture(context.Background(), testSurface(), CaptureConfig{})
	}()
	if host.live() != 0 {
		t.Fatalf("expected no live clones after panic, got %d", host.live())
	}
}

func TestRasterizer_DetachesWithCanceledContext(t *testing.T) {
	host := &fakeHost{widthPx: 816, heightPx: 1056}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&Rasterizer{Host: host}).Capture(ctx, testSurface(), CaptureConfig{}); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if host.live() != 0 {
		t.Fatalf("expected detach to ignore cancellation, live=%d", host.live())
	}
}

func TestRasterizer_DetachFailureIsCaptureFailure(t *testing.T) {
	host := &fakeHost{widthPx: 816, heightPx: 1056, detachErr: errors.New("node gone")}
	logger := &recordingLogger{}
	_, err := (&Rasterizer{Host: host, Logger: logger}).Capture(context.Background(), testSurface(), CaptureConfig{})
	if !IsCaptureFailure(err) {
		t.Fatalf("expected capture failure, got %v", err)
	}
	if len(logger.errs) != 1 {
		t.Fatalf("expected detach error logged, got %v", logger.errs)
	}
}

func TestRasterizer_AttachFailure(t *testing.T) {
	host := &fakeHost{attachErr: errors.New("no such node")}
	_, err := (&Rasterizer{Host: host}).Capture(context.Background(), testSurface(), CaptureConfig{})
	if !IsCaptureFailure(err) {
		t.Fatalf("expected capture failure, got %v", err)
	}
	if host.detached != 0 {
		t.Fatalf("nothing attached, nothing to detach")
	}
}

func TestRasterizer_EmptySurface(t *testing.T) {
	host := &fakeHost{widthPx: 816}
	_, err := (&Rasterizer{Host: host}).Capture(context.Background(), testSurface(), CaptureConfig{})
	if !IsCaptureFailure(err) {
		t.Fatalf("expected capture failure for zero height, got %v", err)
	}
	if host.live() != 0 {
		t.Fatalf("expected clone detached")
	}
}

func TestRasterizer_OversampleCap(t *testing.T) {
	host := &fakeHost{widthPx: 816, heightPx: 1000}
	logger := &recordingLogger{}
	raster, err := (&Rasterizer{Host: host, Logger: logger}).Capture(context.Background(), testSurface(), CaptureConfig{Oversample: 4, MaxHeightPx: 3500})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if raster.Oversample != 3.5 {
		t.Fatalf("expected oversample 3.5, got %f", raster.Oversample)
	}
	if len(logger.warns) != 1 {
		t.Fatalf("expected downscale warning, got %v", logger.warns)
	}

	raster, err = (&Rasterizer{Host: host}).Capture(context.Background(), testSurface(), CaptureConfig{Oversample: 4, MaxHeightPx: 1000})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if raster.Oversample != MinOversample {
		t.Fatalf("expected floor of %f, got %f", MinOversample, raster.Oversample)
	}
}

func TestRasterizer_RejectsLowOversample(t *testing.T) {
	host := &fakeHost{widthPx: 816, heightPx: 1000}
	_, err := (&Rasterizer{Host: host}).Capture(context.Background(), testSurface(), CaptureConfig{Oversample: 2})
	if KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if host.attached != 0 {
		t.Fatalf("expected no attach for invalid config")
	}
}
