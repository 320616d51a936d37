package exportpdf

import (
	"embed"
	"encoding/binary"
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/jung-kurt/gofpdf"
)

const (
	fontFamily = "DejaVu"
	// replacementRune stands in for characters the embedded font cannot draw.
	replacementRune = '�'
)

//go:embed fonts/*.ttf
var fontFS embed.FS

var fontFiles = map[string]string{
	"":  "fonts/DejaVuSansCondensed.ttf",
	"B": "fonts/DejaVuSansCondensed-Bold.ttf",
	"I": "fonts/DejaVuSansCondensed-Oblique.ttf",
}

var (
	fontOnce  sync.Once
	fontBytes map[string][]byte
	coverage  map[rune]struct{}
	fontErr   error
)

func loadFonts() (map[string][]byte, map[rune]struct{}, error) {
	fontOnce.Do(func() {
		fontBytes = make(map[string][]byte, len(fontFiles))
		for style, name := range fontFiles {
			data, err := fontFS.ReadFile(name)
			if err != nil {
				fontErr = err
				return
			}
			fontBytes[style] = data
		}
		// All styles share the regular face's character set.
		coverage, fontErr = cmapCoverage(fontBytes[""])
	})
	return fontBytes, coverage, fontErr
}

// registerFonts adds the UTF-8 font family to pdf.
func registerFonts(pdf *gofpdf.Fpdf) (map[rune]struct{}, error) {
	files, covered, err := loadFonts()
	if err != nil {
		return nil, err
	}
	for _, style := range []string{"", "B", "I"} {
		pdf.AddUTF8FontFromBytes(fontFamily, style, files[style])
	}
	return covered, pdf.Error()
}

// glyphFilter replaces characters without a glyph and remembers them.
type glyphFilter struct {
	covered map[rune]struct{}
	missing map[rune]struct{}
}

func (g *glyphFilter) apply(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			if r == ' ' {
				return r
			}
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		if _, ok := g.covered[r]; ok {
			return r
		}
		if g.missing == nil {
			g.missing = map[rune]struct{}{}
		}
		g.missing[r] = struct{}{}
		return replacementRune
	}, s)
}

// Missing returns the characters that could not be drawn, sorted.
func (g *glyphFilter) Missing() []string {
	out := make([]string, 0, len(g.missing))
	for r := range g.missing {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

var errNoCmap = errors.New("font has no usable unicode cmap")

// cmapCoverage reads the format 4 unicode cmap of a TrueType font and returns
// the characters that map to a real glyph.
func cmapCoverage(font []byte) (map[rune]struct{}, error) {
	u16 := func(off int) (int, bool) {
		if off < 0 || off+2 > len(font) {
			return 0, false
		}
		return int(binary.BigEndian.Uint16(font[off:])), true
	}
	u32 := func(off int) (int, bool) {
		if off < 0 || off+4 > len(font) {
			return 0, false
		}
		return int(binary.BigEndian.Uint32(font[off:])), true
	}

	numTables, ok := u16(4)
	if !ok {
		return nil, errNoCmap
	}
	cmap := -1
	for i := 0; i < numTables; i++ {
		rec := 12 + 16*i
		if rec+16 > len(font) {
			return nil, errNoCmap
		}
		if string(font[rec:rec+4]) == "cmap" {
			cmap, _ = u32(rec + 8)
			break
		}
	}
	if cmap < 0 {
		return nil, errNoCmap
	}

	subtables, ok := u16(cmap + 2)
	if !ok {
		return nil, errNoCmap
	}
	sub := -1
	for i := 0; i < subtables; i++ {
		rec := cmap + 4 + 8*i
		platform, _ := u16(rec)
		encoding, _ := u16(rec + 2)
		offset, ok := u32(rec + 4)
		if !ok {
			return nil, errNoCmap
		}
		if format, _ := u16(cmap + offset); format != 4 {
			continue
		}
		if (platform == 3 && encoding == 1) || platform == 0 {
			sub = cmap + offset
			break
		}
	}
	if sub < 0 {
		return nil, errNoCmap
	}

	segX2, ok := u16(sub + 6)
	if !ok {
		return nil, errNoCmap
	}
	segments := segX2 / 2
	ends := sub + 14
	starts := ends + segX2 + 2
	deltas := starts + segX2
	ranges := deltas + segX2

	covered := make(map[rune]struct{}, 4096)
	for s := 0; s < segments; s++ {
		end, ok1 := u16(ends + 2*s)
		start, ok2 := u16(starts + 2*s)
		delta, ok3 := u16(deltas + 2*s)
		rangeOffset, ok4 := u16(ranges + 2*s)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, errNoCmap
		}
		for c := start; c <= end && c < 0xFFFF; c++ {
			var glyph int
			if rangeOffset == 0 {
				glyph = (c + delta) & 0xFFFF
			} else {
				g, ok := u16(ranges + 2*s + rangeOffset + 2*(c-start))
				if !ok {
					continue
				}
				if g != 0 {
					glyph = (g + delta) & 0xFFFF
				}
			}
			if glyph != 0 {
				covered[rune(c)] = struct{}{}
			}
		}
	}
	if len(covered) == 0 {
		return nil, errNoCmap
	}
	return covered, nil
}
