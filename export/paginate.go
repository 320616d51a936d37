package export

import (
	"fmt"
	"math"
)

const layoutEpsilon = 1e-6

// PagePlacement positions a slice of the raster on one page.
// Geometry is in millimeters; source rows are bitmap pixels, bottom exclusive.
type PagePlacement struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	SourceTop    int     `json:"sourceTop"`
	SourceBottom int     `json:"sourceBottom"`
}

// Layout maps a raster onto pages.
type Layout struct {
	Page           PageSize        `json:"page"`
	ScaledHeightMM float64         `json:"scaledHeightMm"`
	Overflow       bool            `json:"overflow"`
	Policy         OverflowPolicy  `json:"policy"`
	Pages          []PagePlacement `json:"pages"`
}

// Paginator fits rasters to a page size at full page width.
type Paginator struct {
	Page   PageSize
	Policy OverflowPolicy
}

// Paginate computes placements for a raster of widthPx by heightPx.
func (p Paginator) Paginate(widthPx, heightPx int) (Layout, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return Layout{}, NewError(KindValidation, fmt.Sprintf("raster dimensions must be positive, got %dx%d", widthPx, heightPx), nil)
	}
	page := p.Page
	if page.WidthMM <= 0 || page.HeightMM <= 0 {
		page = PageSizeA4
	}
	policy := p.Policy
	if policy == "" {
		policy = DefaultOverflow
	}

	scaled := page.WidthMM * float64(heightPx) / float64(widthPx)
	layout := Layout{Page: page, ScaledHeightMM: scaled, Policy: policy}

	if scaled <= page.HeightMM+layoutEpsilon {
		layout.Pages = []PagePlacement{{
			Width:        page.WidthMM,
			Height:       scaled,
			SourceBottom: heightPx,
		}}
		return layout, nil
	}

	switch policy {
	case OverflowSplit:
		layout.Pages = splitPages(page, scaled, heightPx)
	case OverflowClip:
		layout.Overflow = true
		layout.Pages = []PagePlacement{{
			Width:        page.WidthMM,
			Height:       page.HeightMM,
			SourceBottom: rowAt(page.HeightMM, scaled, heightPx),
		}}
	default:
		return Layout{}, NewError(KindValidation, fmt.Sprintf("unsupported overflow policy: %s", policy), nil)
	}
	return layout, nil
}

func splitPages(page PageSize, scaled float64, heightPx int) []PagePlacement {
	count := int(math.Ceil(scaled/page.HeightMM - layoutEpsilon))
	pages := make([]PagePlacement, 0, count)
	for i := 0; i < count; i++ {
		top := float64(i) * page.HeightMM
		bottom := math.Min(top+page.HeightMM, scaled)
		placement := PagePlacement{
			Width:        page.WidthMM,
			Height:       bottom - top,
			SourceTop:    rowAt(top, scaled, heightPx),
			SourceBottom: rowAt(bottom, scaled, heightPx),
		}
		if i == count-1 {
			placement.SourceBottom = heightPx
		}
		pages = append(pages, placement)
	}
	return pages
}

func rowAt(mm, scaled float64, heightPx int) int {
	row := int(math.Round(float64(heightPx) * mm / scaled))
	if row > heightPx {
		return heightPx
	}
	if row < 0 {
		return 0
	}
	return row
}
