package exportchromium

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-resume-export/export"
)

// WKHTMLToImageHost rasterizes surfaces with wkhtmltoimage. Attach rewrites
// the page so the surface node is the only body content.
type WKHTMLToImageHost struct {
	Command string
	Args    []string
	Env     []string
	Timeout time.Duration
}

var _ export.SurfaceHost = WKHTMLToImageHost{}

// Attach prepares a process-backed capture. No process runs until Capture.
func (h WKHTMLToImageHost) Attach(ctx context.Context, surface export.RenderedSurface, cfg export.CaptureConfig) (export.AttachedSurface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(surface.HTML) == 0 {
		return nil, export.CaptureFailure("surface is empty", nil)
	}
	selector := surface.Selector
	if selector == "" {
		selector = export.DefaultSurfaceSelector
	}
	width := cfg.WidthPx
	if width <= 0 {
		width = export.CanonicalWidthPx
	}
	page, err := isolateSurface(surface.HTML, selector, width, cfg)
	if err != nil {
		return nil, err
	}
	return &processSurface{host: h, html: page, width: width}, nil
}

type processSurface struct {
	host   WKHTMLToImageHost
	html   []byte
	width  int
	raster *export.RasterImage
}

// Bounds runs a 1x capture to measure the surface.
func (s *processSurface) Bounds(ctx context.Context) (float64, float64, error) {
	raster, err := s.run(ctx, 1)
	if err != nil {
		return 0, 0, err
	}
	return float64(raster.WidthPx), float64(raster.HeightPx), nil
}

func (s *processSurface) Capture(ctx context.Context, cfg export.CaptureConfig) (export.RasterImage, error) {
	oversample := cfg.Oversample
	if oversample <= 0 {
		oversample = export.DefaultOversample
	}
	return s.run(ctx, oversample)
}

func (s *processSurface) Detach(ctx context.Context) error {
	_ = ctx
	s.html = nil
	s.raster = nil
	return nil
}

func (s *processSurface) run(ctx context.Context, zoom float64) (export.RasterImage, error) {
	if s.html == nil {
		return export.RasterImage{}, export.CaptureFailure("surface already detached", nil)
	}
	if s.raster != nil && s.raster.Oversample == zoom {
		return *s.raster, nil
	}

	cmdPath := strings.TrimSpace(s.host.Command)
	if cmdPath == "" {
		cmdPath = "wkhtmltoimage"
	}
	cmdCtx := ctx
	if s.host.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, s.host.Timeout)
		defer cancel()
	}

	args := append([]string{}, s.host.Args...)
	args = append(args,
		"--quiet",
		"--format", "png",
		"--disable-smart-width",
		"--width", strconv.Itoa(int(float64(s.width)*zoom)),
		"--zoom", strconv.FormatFloat(zoom, 'f', -1, 64),
		"-", "-",
	)
	cmd := exec.CommandContext(cmdCtx, cmdPath, args...)
	if len(s.host.Env) > 0 {
		cmd.Env = append(os.Environ(), s.host.Env...)
	}
	cmd.Stdin = bytes.NewReader(s.html)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = "wkhtmltoimage failed"
		}
		return export.RasterImage{}, export.CaptureFailure(message, err)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return export.RasterImage{}, export.CaptureFailure(fmt.Sprintf("decode %s output", cmdPath), err)
	}
	b := img.Bounds()
	raster := export.RasterImage{Image: img, WidthPx: b.Dx(), HeightPx: b.Dy(), Oversample: zoom}
	s.raster = &raster
	return raster, nil
}
