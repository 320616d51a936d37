package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-resume-export/resume"
)

const (
	DefaultOversample = 3.0
	// MinOversample is the lowest capture scale that keeps text sharp once embedded.
	MinOversample   = 3.0
	DefaultMode     = ModeImage
	DefaultOverflow = OverflowClip
	DefaultMarginMM = 15.0

	DefaultSurfaceSelector    = "#resume-surface"
	DefaultHeadingPaddingPx   = 8.0
	DefaultFollowingPaddingPx = 4.0
)

// ResolveOptions applies defaults and validates opts for doc.
func ResolveOptions(opts Options, doc resume.Document) (ResolvedOptions, error) {
	page, err := LookupPageSize(opts.PageSize)
	if err != nil {
		return ResolvedOptions{}, err
	}
	opts.PageSize = page.Name

	if opts.Oversample == 0 {
		opts.Oversample = DefaultOversample
	}
	if opts.Oversample < MinOversample {
		return ResolvedOptions{}, NewError(KindValidation, fmt.Sprintf("oversample must be at least %.0f", MinOversample), nil)
	}

	mode := Mode(strings.ToLower(strings.TrimSpace(string(opts.Mode))))
	switch mode {
	case "":
		mode = DefaultMode
	case ModeImage, ModeVector:
	default:
		return ResolvedOptions{}, NewError(KindValidation, fmt.Sprintf("unsupported mode: %s", opts.Mode), nil)
	}
	opts.Mode = mode

	overflow := OverflowPolicy(strings.ToLower(strings.TrimSpace(string(opts.Overflow))))
	switch overflow {
	case "":
		overflow = DefaultOverflow
	case OverflowClip, OverflowSplit:
	default:
		return ResolvedOptions{}, NewError(KindValidation, fmt.Sprintf("unsupported overflow policy: %s", opts.Overflow), nil)
	}
	opts.Overflow = overflow

	if opts.MaxRasterHeightPx < 0 {
		return ResolvedOptions{}, NewError(KindValidation, "max raster height must not be negative", nil)
	}

	margin := DefaultMarginMM
	if strings.TrimSpace(opts.Margin) != "" {
		margin, err = ParseLength(opts.Margin)
		if err != nil {
			return ResolvedOptions{}, err
		}
		if margin*2 >= page.WidthMM {
			return ResolvedOptions{}, NewError(KindValidation, "margin leaves no printable width", nil)
		}
	}

	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = doc.LastUpdated
	}
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = time.Unix(0, 0)
	}
	opts.CreatedAt = opts.CreatedAt.UTC()

	return ResolvedOptions{Options: opts, Page: page, MarginMM: margin}, nil
}

// MergeOptions overlays non-zero fields of override on base.
func MergeOptions(base, override Options) Options {
	out := base
	if override.PageSize != "" {
		out.PageSize = override.PageSize
	}
	if override.Oversample != 0 {
		out.Oversample = override.Oversample
	}
	if override.Mode != "" {
		out.Mode = override.Mode
	}
	if override.Overflow != "" {
		out.Overflow = override.Overflow
	}
	if override.AppendTemplate {
		out.AppendTemplate = true
	}
	if override.FilenameTemplate != "" {
		out.FilenameTemplate = override.FilenameTemplate
	}
	if override.Background != "" {
		out.Background = override.Background
	}
	if override.AllowExternalResources != nil {
		out.AllowExternalResources = boolPtr(*override.AllowExternalResources)
	}
	if override.MaxRasterHeightPx != 0 {
		out.MaxRasterHeightPx = override.MaxRasterHeightPx
	}
	if override.Margin != "" {
		out.Margin = override.Margin
	}
	if !override.CreatedAt.IsZero() {
		out.CreatedAt = override.CreatedAt
	}
	return out
}

// CaptureConfig derives rasterization settings for surface.
func (o ResolvedOptions) CaptureConfig(surface RenderedSurface) CaptureConfig {
	background := o.Background
	if background == "" {
		background = surface.Background
	}
	width := surface.WidthPx
	if width <= 0 {
		width = CanonicalWidthPx
	}
	allowExternal := false
	if o.AllowExternalResources != nil {
		allowExternal = *o.AllowExternalResources
	}
	return CaptureConfig{
		Oversample:             o.Oversample,
		Background:             background,
		AllowExternalResources: allowExternal,
		WidthPx:                width,
		HeadingPaddingPx:       DefaultHeadingPaddingPx,
		FollowingPaddingPx:     DefaultFollowingPaddingPx,
		MaxHeightPx:            o.MaxRasterHeightPx,
	}
}

func boolPtr(value bool) *bool {
	return &value
}
