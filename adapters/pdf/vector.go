package exportpdf

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

const (
	lineHeightMM   = 5.0
	nameSizePt     = 20
	titleSizePt    = 12
	headingSizePt  = 14
	bodySizePt     = 10
	headingAdvance = 6.0
	itemGap        = 3.0
	paragraphGap   = 2.0
	sectionGap     = 5.0
	bulletIndentMM = 5.0
	dividerWidthMM = 0.5
)

// VectorEmitter writes the resume as selectable text in an embedded UTF-8
// font. Layout follows a fixed single-column reading order regardless of the
// template layout; only the template colors carry over. Characters the font
// cannot draw are replaced and reported as a vector_glyph_loss warning.
type VectorEmitter struct{}

var _ export.Emitter = VectorEmitter{}

// Emit writes the document, starting new pages as the cursor requires.
func (VectorEmitter) Emit(ctx context.Context, job export.EmitJob, w io.Writer) (export.EmitStats, error) {
	pdf := newDocument(job)
	covered, err := registerFonts(pdf)
	if err != nil {
		return export.EmitStats{}, export.ExportFailure("load fonts", err)
	}
	page := job.Options.Page
	if page.WidthMM <= 0 || page.HeightMM <= 0 {
		page = export.PageSizeA4
	}
	margin := job.Options.MarginMM
	if margin <= 0 {
		margin = export.DefaultMarginMM
	}

	v := &vectorWriter{
		pdf:        pdf,
		glyphs:     &glyphFilter{covered: covered},
		page:       page,
		margin:     margin,
		colors:     job.Colors,
		background: job.Options.Background,
	}
	v.cursor = export.NewLayoutCursor(page, margin, lineHeightMM, v.addPage)
	v.addPage()

	content := job.Document.Content
	v.header(content.PersonalInfo)

	sections := []func(resume.Content){
		v.summary,
		v.experience,
		v.education,
		v.skills,
		v.projects,
		v.certifications,
		v.languages,
	}
	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return export.EmitStats{}, err
		}
		section(content)
	}

	if pages := v.cursor.Pages(); pages != pdf.PageCount() {
		return export.EmitStats{}, export.ExportFailure(
			fmt.Sprintf("page count mismatch: cursor %d, document %d", pages, pdf.PageCount()), nil)
	}
	stats, err := writeDocument(pdf, w)
	if err != nil {
		return stats, err
	}
	if missing := v.glyphs.Missing(); len(missing) > 0 {
		stats.Warnings = append(stats.Warnings, export.Warning{
			Code:    export.WarningVectorGlyphLoss,
			Message: fmt.Sprintf("%d characters have no glyph in the text font: %s", len(missing), strings.Join(missing, " ")),
			Meta:    map[string]any{"characters": missing},
		})
	}
	return stats, nil
}

type vectorWriter struct {
	pdf        *gofpdf.Fpdf
	glyphs     *glyphFilter
	cursor     *export.LayoutCursor
	page       export.PageSize
	margin     float64
	colors     resume.ColorScheme
	background string
}

func (v *vectorWriter) addPage() {
	v.pdf.AddPage()
	fillBackground(v.pdf, v.background, v.page)
	v.ink()
}

func (v *vectorWriter) width() float64 {
	return v.page.WidthMM - 2*v.margin
}

func (v *vectorWriter) ink() {
	v.pdf.SetTextColor(rgb(v.colors.Text, [3]int{0, 0, 0}))
}

func (v *vectorWriter) font(style string, size float64) {
	v.pdf.SetFont(fontFamily, style, size)
}

func (v *vectorWriter) text(x float64, s string) {
	v.pdf.Text(x, v.cursor.Y(), v.glyphs.apply(s))
}

func (v *vectorWriter) header(info resume.PersonalInfo) {
	v.font("B", nameSizePt)
	v.text(v.margin, info.FullName)
	v.cursor.AdvanceBy(7)

	v.font("", titleSizePt)
	v.text(v.margin, info.JobTitle)
	v.cursor.AdvanceBy(6)

	v.font("", bodySizePt)
	v.text(v.margin, strings.Join(info.Contacts(), " | "))
	dividerOffset := 9.0
	if web := info.WebPresence(); len(web) > 0 {
		v.cursor.AdvanceBy(5)
		v.text(v.margin, strings.Join(web, " | "))
		dividerOffset = 4
	}

	v.cursor.AdvanceBy(dividerOffset)
	v.pdf.SetDrawColor(rgb(v.colors.Primary, [3]int{0, 0, 0}))
	v.pdf.SetLineWidth(dividerWidthMM)
	v.pdf.Line(v.margin, v.cursor.Y(), v.page.WidthMM-v.margin, v.cursor.Y())
	v.cursor.AdvanceBy(8)
}

// heading keeps the title on the same page as its first body line.
func (v *vectorWriter) heading(title string) {
	v.cursor.Ensure(headingAdvance + lineHeightMM)
	v.font("B", headingSizePt)
	v.pdf.SetTextColor(rgb(v.colors.Primary, [3]int{0, 0, 0}))
	v.text(v.margin, title)
	v.ink()
	v.cursor.AdvanceBy(headingAdvance)
}

// lines writes wrapped text one line at a time at the current font.
func (v *vectorWriter) lines(x, width float64, s string) int {
	if strings.TrimSpace(s) == "" {
		return 0
	}
	wrapped := v.pdf.SplitText(v.glyphs.apply(s), width)
	for _, line := range wrapped {
		v.cursor.Ensure(lineHeightMM)
		v.pdf.Text(x, v.cursor.Y(), line)
		v.cursor.Advance(1)
	}
	return len(wrapped)
}

func (v *vectorWriter) line(style, s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	v.font(style, bodySizePt)
	v.lines(v.margin, v.width(), s)
}

func (v *vectorWriter) summary(c resume.Content) {
	if !c.HasSummary() {
		return
	}
	v.heading("Summary")
	v.font("", bodySizePt)
	v.lines(v.margin, v.width(), c.Summary)
	v.cursor.AdvanceBy(sectionGap)
}

func (v *vectorWriter) experience(c resume.Content) {
	if len(c.Experience) == 0 {
		return
	}
	v.heading("Experience")
	for _, item := range c.Experience {
		v.cursor.Ensure(3 * lineHeightMM)
		title := item.Title
		if where := joinNonEmpty(", ", item.Company, item.Location); where != "" {
			title = joinNonEmpty(" - ", title, where)
		}
		v.font("B", titleSizePt)
		v.lines(v.margin, v.width(), title)
		v.line("I", dateRange(item.StartDate, item.EndDate))

		if strings.TrimSpace(item.Description) != "" {
			v.line("", item.Description)
			v.cursor.AdvanceBy(paragraphGap)
		}
		v.font("", bodySizePt)
		for _, highlight := range item.Highlights {
			if strings.TrimSpace(highlight) == "" {
				continue
			}
			v.cursor.Ensure(lineHeightMM)
			v.text(v.margin, "•")
			v.lines(v.margin+bulletIndentMM, v.width()-bulletIndentMM, highlight)
			v.cursor.AdvanceBy(paragraphGap)
		}
		v.cursor.AdvanceBy(itemGap)
	}
}

func (v *vectorWriter) education(c resume.Content) {
	if len(c.Education) == 0 {
		return
	}
	v.heading("Education")
	for _, item := range c.Education {
		v.cursor.Ensure(3 * lineHeightMM)
		v.font("B", titleSizePt)
		v.lines(v.margin, v.width(), item.Degree)
		v.line("", joinNonEmpty(", ", item.Institution, item.Location))
		v.line("I", dateRange(item.StartDate, item.EndDate))
		if strings.TrimSpace(item.GPA) != "" {
			v.line("", "GPA: "+strings.TrimSpace(item.GPA))
		}
		v.line("", item.Description)
		v.cursor.AdvanceBy(itemGap)
	}
}

func (v *vectorWriter) skills(c resume.Content) {
	skills := c.SkillList()
	if len(skills) == 0 {
		return
	}
	v.heading("Skills")
	v.line("", strings.Join(skills, ", "))
	v.cursor.AdvanceBy(sectionGap)
}

func (v *vectorWriter) projects(c resume.Content) {
	if len(c.Projects) == 0 {
		return
	}
	v.heading("Projects")
	for _, item := range c.Projects {
		v.cursor.Ensure(2 * lineHeightMM)
		v.font("B", titleSizePt)
		v.lines(v.margin, v.width(), item.Name)
		v.line("I", dateRange(item.StartDate, item.EndDate))
		v.line("", item.Description)
		if tech := nonBlank(item.Technologies); len(tech) > 0 {
			v.line("", "Technologies: "+strings.Join(tech, ", "))
		}
		v.line("", item.URL)
		v.cursor.AdvanceBy(itemGap)
	}
}

func (v *vectorWriter) certifications(c resume.Content) {
	if len(c.Certifications) == 0 {
		return
	}
	v.heading("Certifications")
	for _, item := range c.Certifications {
		entry := joinNonEmpty(" - ", item.Name, item.Issuer)
		if date := strings.TrimSpace(item.Date); date != "" {
			entry += " (" + date + ")"
		}
		v.line("", entry)
	}
	v.cursor.AdvanceBy(sectionGap)
}

func (v *vectorWriter) languages(c resume.Content) {
	if len(c.Languages) == 0 {
		return
	}
	entries := make([]string, 0, len(c.Languages))
	for _, item := range c.Languages {
		name := strings.TrimSpace(item.Language)
		if name == "" {
			continue
		}
		if item.Proficiency != "" {
			name += " (" + string(item.Proficiency) + ")"
		}
		entries = append(entries, name)
	}
	if len(entries) == 0 {
		return
	}
	v.heading("Languages")
	v.line("", strings.Join(entries, ", "))
}

func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start + " - Present"
	case start == "":
		return end
	}
	return start + " - " + end
}

func joinNonEmpty(sep string, values ...string) string {
	return strings.Join(nonBlank(values), sep)
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
