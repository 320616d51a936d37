package exportpdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/goliatone/go-resume-export/export"
)

// ImageEmitter embeds the captured raster as lossless PNG slices.
type ImageEmitter struct{}

var _ export.Emitter = ImageEmitter{}

// Emit writes one page per layout placement.
func (ImageEmitter) Emit(ctx context.Context, job export.EmitJob, w io.Writer) (export.EmitStats, error) {
	if job.Raster.Image == nil {
		return export.EmitStats{}, export.NewError(export.KindValidation, "image mode requires a raster", nil)
	}
	if len(job.Layout.Pages) == 0 {
		return export.EmitStats{}, export.NewError(export.KindValidation, "image mode requires a page layout", nil)
	}

	pdf := newDocument(job)
	page := job.Layout.Page
	if page.WidthMM <= 0 {
		page = job.Options.Page
	}
	background := job.Options.Background

	for i, placement := range job.Layout.Pages {
		if err := ctx.Err(); err != nil {
			return export.EmitStats{}, err
		}
		slice, err := encodeSlice(job.Raster.Image, placement)
		if err != nil {
			return export.EmitStats{}, export.ExportFailure(fmt.Sprintf("encode page %d", i+1), err)
		}

		name := fmt.Sprintf("%s-page-%d", job.ExportID, i+1)
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.AddPage()
		fillBackground(pdf, background, page)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(slice))
		pdf.ImageOptions(name, placement.X, placement.Y, placement.Width, placement.Height, false, opts, 0, "")
	}

	return writeDocument(pdf, w)
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// encodeSlice crops rows [SourceTop, SourceBottom) and encodes them as PNG.
func encodeSlice(img image.Image, placement export.PagePlacement) ([]byte, error) {
	bounds := img.Bounds()
	top := bounds.Min.Y + placement.SourceTop
	bottom := bounds.Min.Y + placement.SourceBottom
	if bottom > bounds.Max.Y {
		bottom = bounds.Max.Y
	}
	if bottom <= top {
		return nil, fmt.Errorf("empty row range %d-%d", placement.SourceTop, placement.SourceBottom)
	}
	rect := image.Rect(bounds.Min.X, top, bounds.Max.X, bottom)

	var slice image.Image
	if rect == bounds {
		slice = img
	} else if sub, ok := img.(subImager); ok {
		slice = sub.SubImage(rect)
	} else {
		dst := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
		slice = dst
	}

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(&buf, slice); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
