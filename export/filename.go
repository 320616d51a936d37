package export

import (
	"bytes"
	"regexp"
	"strings"
	"text/template"

	"github.com/goliatone/go-resume-export/resume"
)

const (
	// DefaultFilename is used when the display name sanitizes to nothing.
	DefaultFilename = "resume"

	filenameTemplateDefault  = "{{.Name}}"
	filenameTemplateWithSkin = "{{.Name}}_{{.Template}}"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	pathSeparator = strings.NewReplacer("/", "-", "\\", "-")
)

type filenameData struct {
	Name     string
	Template string
	Layout   string
	PageSize string
	Mode     string
	Date     string
}

// SanitizeName replaces every whitespace run with a single underscore.
// Leading and trailing runs are kept, so "My  Resume " becomes "My_Resume_".
func SanitizeName(name string) string {
	name = whitespaceRun.ReplaceAllString(name, "_")
	return pathSeparator.Replace(name)
}

// RenderFilename builds the download name for doc.
func RenderFilename(doc resume.Document, opts ResolvedOptions) (string, error) {
	pattern := opts.FilenameTemplate
	if pattern == "" {
		pattern = filenameTemplateDefault
		if opts.AppendTemplate {
			pattern = filenameTemplateWithSkin
		}
	}

	name := SanitizeName(doc.Name)
	if name == "" {
		name = DefaultFilename
	}
	templateID := doc.Template.Normalize()

	data := filenameData{
		Name:     name,
		Template: string(templateID),
		Layout:   string(templateID.Layout()),
		PageSize: opts.Page.Name,
		Mode:     string(opts.Mode),
		Date:     opts.CreatedAt.UTC().Format("20060102"),
	}

	tmpl, err := template.New("filename").Option("missingkey=error").Parse(pattern)
	if err != nil {
		return "", NewError(KindValidation, "invalid filename template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewError(KindValidation, "invalid filename template", err)
	}

	result := buf.String()
	if strings.TrimSpace(result) == "" {
		result = DefaultFilename
	}
	result = SanitizeName(result)
	if !strings.HasSuffix(strings.ToLower(result), ".pdf") {
		result += ".pdf"
	}
	return result, nil
}
