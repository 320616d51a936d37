package export

// LayoutCursor tracks the vertical write position of text output and starts
// new pages instead of writing below the bottom margin.
type LayoutCursor struct {
	page       PageSize
	margin     float64
	lineHeight float64
	y          float64
	pages      int
	onBreak    func()
}

// NewLayoutCursor places a cursor at the top margin of the first page.
// onBreak is called whenever a new page is started.
func NewLayoutCursor(page PageSize, marginMM, lineHeightMM float64, onBreak func()) *LayoutCursor {
	return &LayoutCursor{
		page:       page,
		margin:     marginMM,
		lineHeight: lineHeightMM,
		y:          marginMM,
		pages:      1,
		onBreak:    onBreak,
	}
}

// Y returns the current position in millimeters from the page top.
func (c *LayoutCursor) Y() float64 { return c.y }

// Pages returns the number of pages started so far.
func (c *LayoutCursor) Pages() int { return c.pages }

// LineHeight returns the base line height in millimeters.
func (c *LayoutCursor) LineHeight() float64 { return c.lineHeight }

// Bottom returns the lowest writable position.
func (c *LayoutCursor) Bottom() float64 { return c.page.HeightMM - c.margin }

// AtTop reports whether nothing has been written on the current page.
func (c *LayoutCursor) AtTop() bool { return c.y <= c.margin+layoutEpsilon }

// WouldOverflow reports whether a block of heightMM would cross the bottom margin.
func (c *LayoutCursor) WouldOverflow(heightMM float64) bool {
	return c.y+heightMM > c.Bottom()+layoutEpsilon
}

// Break starts a new page.
func (c *LayoutCursor) Break() {
	c.pages++
	c.y = c.margin
	if c.onBreak != nil {
		c.onBreak()
	}
}

// Ensure breaks the page when a block of heightMM does not fit. A block taller
// than a whole page is written from the top of a fresh page.
func (c *LayoutCursor) Ensure(heightMM float64) bool {
	if !c.WouldOverflow(heightMM) || c.AtTop() {
		return false
	}
	c.Break()
	return true
}

// Advance moves down by whole lines.
func (c *LayoutCursor) Advance(lines int) {
	c.AdvanceBy(float64(lines) * c.lineHeight)
}

// AdvanceBy moves down by heightMM, starting a new page when the move passes
// the bottom margin.
func (c *LayoutCursor) AdvanceBy(heightMM float64) {
	if heightMM <= 0 {
		return
	}
	if c.WouldOverflow(heightMM) {
		c.Break()
		return
	}
	c.y += heightMM
}
