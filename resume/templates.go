package resume

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-errors"
)

// TemplateID selects a visual template.
type TemplateID string

const (
	TemplateModernBlue         TemplateID = "modern-blue"
	TemplateModernGreen        TemplateID = "modern-green"
	TemplateProfessionalMaroon TemplateID = "professional-maroon"
	TemplateCreativePurple     TemplateID = "creative-purple"
	TemplateMinimalGray        TemplateID = "minimal-gray"
	TemplateExecutiveBlack     TemplateID = "executive-black"
	TemplateModernOrange       TemplateID = "modern-orange"
	TemplateCreativeTeal       TemplateID = "creative-teal"

	DefaultTemplate = TemplateModernBlue
)

// Layout is the page structure a template uses.
type Layout string

const (
	LayoutModern       Layout = "modern"
	LayoutProfessional Layout = "professional"
	LayoutCreative     Layout = "creative"
)

// ColorScheme holds the hex colors of a template.
type ColorScheme struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

var colorSchemes = map[TemplateID]ColorScheme{
	TemplateModernBlue:         {Primary: "#2563eb", Secondary: "#3b82f6", Accent: "#60a5fa", Background: "#f8fafc", Text: "#1e293b"},
	TemplateModernGreen:        {Primary: "#059669", Secondary: "#10b981", Accent: "#34d399", Background: "#f0fdf4", Text: "#064e3b"},
	TemplateProfessionalMaroon: {Primary: "#9f1239", Secondary: "#be123c", Accent: "#e11d48", Background: "#fff1f2", Text: "#881337"},
	TemplateCreativePurple:     {Primary: "#7c3aed", Secondary: "#8b5cf6", Accent: "#a78bfa", Background: "#f5f3ff", Text: "#4c1d95"},
	TemplateMinimalGray:        {Primary: "#475569", Secondary: "#64748b", Accent: "#94a3b8", Background: "#f8fafc", Text: "#334155"},
	TemplateExecutiveBlack:     {Primary: "#020617", Secondary: "#1e293b", Accent: "#334155", Background: "#f8fafc", Text: "#0f172a"},
	TemplateModernOrange:       {Primary: "#ea580c", Secondary: "#f97316", Accent: "#fb923c", Background: "#fff7ed", Text: "#9a3412"},
	TemplateCreativeTeal:       {Primary: "#0d9488", Secondary: "#14b8a6", Accent: "#2dd4bf", Background: "#f0fdfa", Text: "#134e4a"},
}

// Templates lists the known template identifiers in sorted order.
func Templates() []TemplateID {
	out := make([]TemplateID, 0, len(colorSchemes))
	for id := range colorSchemes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Normalize maps an empty identifier to the default template.
func (id TemplateID) Normalize() TemplateID {
	trimmed := TemplateID(strings.ToLower(strings.TrimSpace(string(id))))
	if trimmed == "" {
		return DefaultTemplate
	}
	return trimmed
}

// Valid reports whether the identifier is a known template.
func (id TemplateID) Valid() bool {
	_, ok := colorSchemes[id.Normalize()]
	return ok
}

// Layout returns the page structure used by the template.
func (id TemplateID) Layout() Layout {
	family, _, _ := strings.Cut(string(id.Normalize()), "-")
	switch family {
	case "professional", "executive":
		return LayoutProfessional
	case "creative":
		return LayoutCreative
	default:
		return LayoutModern
	}
}

// ResolveColors returns the color scheme for a template.
func ResolveColors(id TemplateID) (ColorScheme, error) {
	scheme, ok := colorSchemes[id.Normalize()]
	if !ok {
		return ColorScheme{}, errors.New(fmt.Sprintf("unknown template %q", id), errors.CategoryValidation).
			WithTextCode("TEMPLATE_UNKNOWN")
	}
	return scheme, nil
}

// ParseHex parses #rgb or #rrggbb colors.
func ParseHex(color string) (r, g, b int, err error) {
	value := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(value) == 3 {
		value = string([]byte{value[0], value[0], value[1], value[1], value[2], value[2]})
	}
	if len(value) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", color)
	}
	parsed, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q: %w", color, err)
	}
	return int(parsed >> 16 & 0xff), int(parsed >> 8 & 0xff), int(parsed & 0xff), nil
}
