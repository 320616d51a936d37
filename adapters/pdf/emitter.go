package exportpdf

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

// Creator is written to the document info dictionary.
const Creator = "go-resume-export"

// Register adds the image and vector emitters to registry.
func Register(registry *export.EmitterRegistry) error {
	if registry == nil {
		return export.NewError(export.KindValidation, "emitter registry is required", nil)
	}
	if err := registry.Register(export.ModeImage, ImageEmitter{}); err != nil {
		return err
	}
	return registry.Register(export.ModeVector, VectorEmitter{})
}

func newDocument(job export.EmitJob) *gofpdf.Fpdf {
	page := job.Options.Page
	if page.WidthMM <= 0 || page.HeightMM <= 0 {
		page = export.PageSizeA4
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.WidthMM, Ht: page.HeightMM},
	})
	pdf.SetCompression(true)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(job.CreatedAt)
	pdf.SetCreator(Creator, false)
	pdf.SetTitle(job.Document.Name, true)
	if author := job.Document.Content.PersonalInfo.FullName; author != "" {
		pdf.SetAuthor(author, true)
	}
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	return pdf
}

func writeDocument(pdf *gofpdf.Fpdf, w io.Writer) (export.EmitStats, error) {
	if err := pdf.Error(); err != nil {
		return export.EmitStats{}, export.ExportFailure("build pdf", err)
	}
	cw := &countingWriter{w: w}
	if err := pdf.Output(cw); err != nil {
		return export.EmitStats{Bytes: cw.count}, export.ExportFailure("serialize pdf", err)
	}
	return export.EmitStats{Pages: pdf.PageCount(), Bytes: cw.count}, nil
}

func fillBackground(pdf *gofpdf.Fpdf, color string, page export.PageSize) {
	r, g, b, err := resume.ParseHex(color)
	if err != nil || (r == 255 && g == 255 && b == 255) {
		return
	}
	pdf.SetFillColor(r, g, b)
	pdf.Rect(0, 0, page.WidthMM, page.HeightMM, "F")
}

func rgb(color string, fallback [3]int) (int, int, int) {
	r, g, b, err := resume.ParseHex(color)
	if err != nil {
		return fallback[0], fallback[1], fallback[2]
	}
	return r, g, b
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
