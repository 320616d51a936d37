package export

import (
	"testing"
	"time"

	"github.com/goliatone/go-resume-export/resume"
)

func TestRenderFilename(t *testing.T) {
	created := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		doc  resume.Document
		opts ResolvedOptions
		want string
	}{
		{
			name: "whitespace runs collapse without trimming",
			doc:  resume.Document{Name: "My  Resume "},
			want: "My_Resume_.pdf",
		},
		{
			name: "tabs and newlines",
			doc:  resume.Document{Name: "Jane\tDoe\nCV"},
			want: "Jane_Doe_CV.pdf",
		},
		{
			name: "empty name",
			doc:  resume.Document{Name: ""},
			want: "resume.pdf",
		},
		{
			name: "path separators",
			doc:  resume.Document{Name: "a/b\\c"},
			want: "a-b-c.pdf",
		},
		{
			name: "existing extension kept",
			doc:  resume.Document{Name: "final.PDF"},
			want: "final.PDF",
		},
		{
			name: "append template",
			doc:  resume.Document{Name: "My Resume", Template: resume.TemplateCreativeTeal},
			opts: ResolvedOptions{Options: Options{AppendTemplate: true}},
			want: "My_Resume_creative-teal.pdf",
		},
		{
			name: "append default template",
			doc:  resume.Document{Name: "CV"},
			opts: ResolvedOptions{Options: Options{AppendTemplate: true}},
			want: "CV_modern-blue.pdf",
		},
		{
			name: "custom pattern",
			doc:  resume.Document{Name: "CV"},
			opts: ResolvedOptions{
				Options: Options{FilenameTemplate: "{{.Name}}-{{.PageSize}}-{{.Date}}", CreatedAt: created},
				Page:    PageSizeLetter,
			},
			want: "CV-Letter-20240506.pdf",
		},
		{
			name: "custom pattern with spaces",
			doc:  resume.Document{Name: "My Resume"},
			opts: ResolvedOptions{
				Options: Options{FilenameTemplate: "{{.Name}} {{.Mode}}\t{{.Date}}", Mode: ModeVector, CreatedAt: created},
			},
			want: "My_Resume_vector_20240506.pdf",
		},
		{
			name: "blank pattern output",
			doc:  resume.Document{Name: "CV"},
			opts: ResolvedOptions{Options: Options{FilenameTemplate: "  "}},
			want: "resume.pdf",
		},
	}

	for _, tc := range tests {
		got, err := RenderFilename(tc.doc, tc.opts)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestRenderFilename_InvalidPattern(t *testing.T) {
	opts := ResolvedOptions{Options: Options{FilenameTemplate: "{{.Missing}}"}}
	if _, err := RenderFilename(resume.Document{Name: "x"}, opts); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
