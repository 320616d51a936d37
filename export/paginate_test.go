package export

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestPaginate_LetterFitsOnePage(t *testing.T) {
	// 8.5in x 10in surface at 3x oversample.
	layout, err := Paginator{Page: PageSizeLetter}.Paginate(2448, 2880)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(layout.Pages) != 1 || layout.Overflow {
		t.Fatalf("expected one page without overflow, got %+v", layout)
	}
	page := layout.Pages[0]
	if !approx(page.Width, 215.9) || !approx(page.Height, 254) {
		t.Fatalf("expected 215.9x254mm, got %fx%f", page.Width, page.Height)
	}
	if page.X != 0 || page.Y != 0 || page.SourceBottom != 2880 {
		t.Fatalf("unexpected placement: %+v", page)
	}
}

func TestPaginate_ExactFitIsNotOverflow(t *testing.T) {
	layout, err := Paginator{Page: PageSizeA4}.Paginate(210, 297)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if layout.Overflow || len(layout.Pages) != 1 || !approx(layout.Pages[0].Height, 297) {
		t.Fatalf("expected exact single page, got %+v", layout)
	}
}

func TestPaginate_ClipOverflowOnA4(t *testing.T) {
	// Scaled height of 400mm at A4 width.
	layout, err := Paginator{Page: PageSizeA4, Policy: OverflowClip}.Paginate(2100, 4000)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if !approx(layout.ScaledHeightMM, 400) {
		t.Fatalf("expected 400mm scaled height, got %f", layout.ScaledHeightMM)
	}
	if !layout.Overflow || len(layout.Pages) != 1 {
		t.Fatalf("expected clipped single page, got %+v", layout)
	}
	page := layout.Pages[0]
	if !approx(page.Height, 297) || page.SourceBottom != 2970 {
		t.Fatalf("expected 297mm from 2970 rows, got %f from %d", page.Height, page.SourceBottom)
	}
}

func TestPaginate_SplitOverflowOnA4(t *testing.T) {
	layout, err := Paginator{Page: PageSizeA4, Policy: OverflowSplit}.Paginate(2100, 4000)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if layout.Overflow {
		t.Fatalf("split layouts are not flagged as overflow")
	}
	if len(layout.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(layout.Pages))
	}
	first, last := layout.Pages[0], layout.Pages[1]
	if !approx(first.Height, 297) || first.SourceTop != 0 || first.SourceBottom != 2970 {
		t.Fatalf("unexpected first page: %+v", first)
	}
	if !approx(last.Height, 103) || last.SourceTop != 2970 || last.SourceBottom != 4000 {
		t.Fatalf("unexpected last page: %+v", last)
	}
	for _, page := range layout.Pages {
		if page.Height > PageSizeA4.HeightMM+layoutEpsilon {
			t.Fatalf("page exceeds printable height: %+v", page)
		}
	}
}

func TestPaginate_RejectsEmptyRaster(t *testing.T) {
	if _, err := (Paginator{}).Paginate(0, 10); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
