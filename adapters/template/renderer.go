package exporttemplate

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

// SurfaceID is the id of the root node every template renders.
const SurfaceID = "resume-surface"

// Renderer renders resume documents into HTML surfaces.
type Renderer struct {
	Enabled   bool
	Templates TemplateExecutor
	// TemplateName overrides the layout-derived template name.
	TemplateName string
	// PreviewScale is applied to the preview wrapper; captures ignore it.
	PreviewScale float64
}

var _ export.SurfaceRenderer = Renderer{}

// NewRenderer returns an enabled renderer backed by the embedded templates.
func NewRenderer() (Renderer, error) {
	executor, err := DefaultExecutor()
	if err != nil {
		return Renderer{}, err
	}
	return Renderer{Enabled: true, Templates: executor}, nil
}

// Sections flags which resume sections have content.
type Sections struct {
	Summary        bool
	Experience     bool
	Education      bool
	Skills         bool
	Projects       bool
	Certifications bool
	Languages      bool
}

func sectionsFor(content resume.Content) Sections {
	return Sections{
		Summary:        content.HasSummary(),
		Experience:     len(content.Experience) > 0,
		Education:      len(content.Education) > 0,
		Skills:         len(content.SkillList()) > 0,
		Projects:       len(content.Projects) > 0,
		Certifications: len(content.Certifications) > 0,
		Languages:      len(content.Languages) > 0,
	}
}

// Render executes the layout template for doc.
func (r Renderer) Render(ctx context.Context, doc resume.Document) (export.RenderedSurface, error) {
	if !r.Enabled {
		return export.RenderedSurface{}, export.NewError(export.KindNotImpl, "template renderer is disabled", nil)
	}
	if r.Templates == nil {
		return export.RenderedSurface{}, export.NewError(export.KindValidation, "template renderer requires templates", nil)
	}
	if err := ctx.Err(); err != nil {
		return export.RenderedSurface{}, err
	}

	templateID := doc.Template.Normalize()
	colors, err := resume.ResolveColors(templateID)
	if err != nil {
		return export.RenderedSurface{}, err
	}
	layout := templateID.Layout()

	name := r.TemplateName
	if name == "" {
		name = string(layout) + ".html"
	}

	scale := r.PreviewScale
	if scale <= 0 {
		scale = 1
	}

	content := doc.Content
	data := map[string]any{
		"document":      doc,
		"content":       content,
		"info":          content.PersonalInfo,
		"contacts":      content.PersonalInfo.Contacts(),
		"web":           content.PersonalInfo.WebPresence(),
		"skills":        content.SkillList(),
		"sections":      sectionsFor(content),
		"colors":        colors,
		"layout":        string(layout),
		"template":      string(templateID),
		"surface_id":    SurfaceID,
		"width_px":      export.CanonicalWidthPx,
		"preview_scale": fmt.Sprintf("%.4g", scale),
	}

	var buf bytes.Buffer
	if err := r.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		return export.RenderedSurface{}, export.NewError(export.KindInternal, fmt.Sprintf("render template %s", name), err)
	}

	return export.RenderedSurface{
		HTML:       buf.Bytes(),
		Selector:   "#" + SurfaceID,
		WidthPx:    export.CanonicalWidthPx,
		Background: colors.Background,
		Template:   templateID,
	}, nil
}
