package exporttemplate

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

func TestRenderer_Disabled(t *testing.T) {
	_, err := Renderer{}.Render(context.Background(), resume.SampleDocument())
	if export.KindFromError(err) != export.KindNotImpl {
		t.Fatalf("expected not_implemented, got %v", export.KindFromError(err))
	}
}

func TestRenderer_MissingTemplates(t *testing.T) {
	_, err := Renderer{Enabled: true}.Render(context.Background(), resume.SampleDocument())
	if export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected validation error, got %v", export.KindFromError(err))
	}
}

func TestDefaultExecutor_CompilesLayouts(t *testing.T) {
	executor, err := DefaultExecutor()
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	got := strings.Join(executor.Names(), ",")
	if got != "creative.html,modern.html,professional.html" {
		t.Fatalf("unexpected templates: %s", got)
	}
}

func TestRenderer_AllTemplates(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	for _, id := range resume.Templates() {
		doc := resume.SampleDocument()
		doc.Template = id
		surface, err := renderer.Render(context.Background(), doc)
		if err != nil {
			t.Fatalf("%s: render: %v", id, err)
		}
		html := string(surface.HTML)
		if surface.Selector != "#resume-surface" || surface.WidthPx != export.CanonicalWidthPx {
			t.Fatalf("%s: unexpected surface %+v", id, surface)
		}
		if !strings.Contains(html, `id="resume-surface"`) || !strings.Contains(html, "width: 816px") {
			t.Fatalf("%s: surface root missing", id)
		}
		if !strings.Contains(html, `data-layout="`+string(id.Layout())+`"`) {
			t.Fatalf("%s: expected layout %s", id, id.Layout())
		}
		colors, _ := resume.ResolveColors(id)
		if !strings.Contains(html, colors.Primary) || surface.Background != colors.Background {
			t.Fatalf("%s: expected color scheme applied", id)
		}
		for _, want := range []string{"Alex Johnson", "Tech Innovations Inc.", "GPA: 3.8", "GraphQL", "E-commerce Platform"} {
			if !strings.Contains(html, want) {
				t.Fatalf("%s: expected %q in output", id, want)
			}
		}
	}
}

func TestRenderer_OmitsEmptySections(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	for _, id := range []resume.TemplateID{resume.TemplateModernBlue, resume.TemplateExecutiveBlack, resume.TemplateCreativePurple} {
		doc := resume.SampleDocument()
		doc.Template = id
		doc.Content.Summary = "   "
		doc.Content.Education = nil
		surface, err := renderer.Render(context.Background(), doc)
		if err != nil {
			t.Fatalf("%s: render: %v", id, err)
		}
		html := string(surface.HTML)
		for _, heading := range []string{"Summary</h3>", "Education</h3>"} {
			if strings.Contains(html, heading) {
				t.Fatalf("%s: expected %q omitted", id, heading)
			}
		}
		if !strings.Contains(html, "Experience</h3>") {
			t.Fatalf("%s: expected experience heading kept", id)
		}
	}
}

func TestRenderer_EscapesContent(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	doc := resume.SampleDocument()
	doc.Content.PersonalInfo.FullName = "<script>alert(1)</script>"
	surface, err := renderer.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if bytes.Contains(surface.HTML, []byte("<script>alert")) {
		t.Fatalf("expected name escaped")
	}
}

func TestPongo2Executor_CustomTemplates(t *testing.T) {
	executor, err := NewPongo2Executor(fstest.MapFS{
		"compact.html": &fstest.MapFile{Data: []byte(`<div id="{{ surface_id }}">{{ info.FullName }}</div>`)},
	})
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	renderer := Renderer{Enabled: true, Templates: executor, TemplateName: "compact.html"}
	surface, err := renderer.Render(context.Background(), resume.SampleDocument())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(surface.HTML); got != `<div id="resume-surface">Alex Johnson</div>` {
		t.Fatalf("unexpected output: %q", got)
	}

	renderer.TemplateName = "missing.html"
	if _, err := renderer.Render(context.Background(), resume.SampleDocument()); err == nil {
		t.Fatalf("expected error for missing template")
	}
}
