package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// CSSPixelsPerInch is the layout DPI baseline of rendered surfaces.
	CSSPixelsPerInch = 96.0
	// MillimetersPerInch converts inches to millimeters.
	MillimetersPerInch = 25.4
	// CanonicalWidthPx is the surface width: 8.5in at the 96 DPI baseline.
	CanonicalWidthPx = 816
)

var lengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

// PageSize is a physical paper size in millimeters.
type PageSize struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

var (
	PageSizeA4     = PageSize{Name: "A4", WidthMM: 210, HeightMM: 297}
	PageSizeLetter = PageSize{Name: "Letter", WidthMM: 215.9, HeightMM: 279.4}
)

var pageSizes = map[string]PageSize{
	"A4":     PageSizeA4,
	"LETTER": PageSizeLetter,
}

// LookupPageSize resolves a page size name. Empty names resolve to A4.
func LookupPageSize(name string) (PageSize, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return PageSizeA4, nil
	}
	size, ok := pageSizes[key]
	if !ok {
		return PageSize{}, NewError(KindValidation, fmt.Sprintf("unsupported page size: %s", name), nil)
	}
	return size, nil
}

// PxToMM converts CSS pixels to millimeters at the 96 DPI baseline.
func PxToMM(px float64) float64 {
	return px / CSSPixelsPerInch * MillimetersPerInch
}

// MMToPx converts millimeters to CSS pixels at the 96 DPI baseline.
func MMToPx(mm float64) float64 {
	return mm / MillimetersPerInch * CSSPixelsPerInch
}

// ParseLength parses a length such as "15mm" or "0.5in" into millimeters.
// Values without a unit are millimeters.
func ParseLength(value string) (float64, error) {
	matches := lengthPattern.FindStringSubmatch(value)
	if len(matches) != 3 {
		return 0, NewError(KindValidation, fmt.Sprintf("invalid length: %s", value), nil)
	}

	amount, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, NewError(KindValidation, fmt.Sprintf("invalid length: %s", value), err)
	}

	switch unit := strings.ToLower(matches[2]); unit {
	case "", "mm":
		return amount, nil
	case "cm":
		return amount * 10, nil
	case "in":
		return amount * MillimetersPerInch, nil
	case "pt":
		return amount / 72.0 * MillimetersPerInch, nil
	case "px":
		return PxToMM(amount), nil
	default:
		return 0, NewError(KindValidation, fmt.Sprintf("unsupported length unit: %s", unit), nil)
	}
}
