package export

import "context"

// WarningCode identifies a non-fatal export condition.
type WarningCode string

const (
	// WarningContentOverflow means the raster was taller than one page and was clipped.
	WarningContentOverflow WarningCode = "content_overflow"
	// WarningRasterDownscaled means the oversample factor was lowered to respect a size cap.
	WarningRasterDownscaled WarningCode = "raster_downscaled"
	// WarningVectorPageBreak means vector output needed more than one page.
	WarningVectorPageBreak WarningCode = "vector_page_break"
	// WarningVectorGlyphLoss means some characters had no glyph in the text font.
	WarningVectorGlyphLoss WarningCode = "vector_glyph_loss"
)

// Warning is a non-fatal observation recorded on a Result.
type Warning struct {
	Code    WarningCode    `json:"code"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// ContentOverflowWarning builds the warning for clipped content.
func ContentOverflowWarning(scaledHeightMM, pageHeightMM float64) Warning {
	return Warning{
		Code:    WarningContentOverflow,
		Message: "content taller than one page was clipped",
		Meta: map[string]any{
			"scaled_height_mm": scaledHeightMM,
			"page_height_mm":   pageHeightMM,
		},
	}
}

// WarningSink receives warnings as they are recorded.
type WarningSink interface {
	Warn(ctx context.Context, exportID string, warning Warning)
}

// WarningFunc adapts a function to a WarningSink.
type WarningFunc func(ctx context.Context, exportID string, warning Warning)

func (f WarningFunc) Warn(ctx context.Context, exportID string, warning Warning) {
	if f == nil {
		return
	}
	f(ctx, exportID, warning)
}

// HasWarning reports whether warnings contains code.
func HasWarning(warnings []Warning, code WarningCode) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
