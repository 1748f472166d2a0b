// Package report renders the monthly recap of approved visits as a PDF.
package report

// Page geometry of an A4 landscape page, in points.
const (
	PageWidth  = 841.89
	PageHeight = 595.28
	Margin     = 50.0

	// PageBoundary is the cursor position past which the next row opens a new page.
	PageBoundary    = 500.0
	RowHeight       = 30.0
	HeaderRowHeight = 25.0

	footerGap    = 24.0
	footerHeight = 116.0
)

// Layout holds the pagination rules of the recap table.
type Layout struct {
	Boundary     float64
	Top          float64
	Bottom       float64
	RowHeight    float64
	HeaderHeight float64
	FooterGap    float64
	FooterHeight float64
	RepeatHeader bool
}

// DefaultLayout returns the recap layout. repeatHeader redraws the column
// header on every continuation page.
func DefaultLayout(repeatHeader bool) Layout {
	return Layout{
		Boundary:     PageBoundary,
		Top:          Margin,
		Bottom:       PageHeight - Margin,
		RowHeight:    RowHeight,
		HeaderHeight: HeaderRowHeight,
		FooterGap:    footerGap,
		FooterHeight: footerHeight,
		RepeatHeader: repeatHeader,
	}
}

// Placement is where an element lands: 1-based page and top edge.
type Placement struct {
	Page int
	Y    float64
}

// Plan is the full placement of a table of n rows.
type Plan struct {
	Headers []Placement
	Rows    []Placement
	Footer  Placement
	Pages   int
}

// NeedsBreak reports whether a row cannot start at cursor y.
func (l Layout) NeedsBreak(y float64) bool {
	return y > l.Boundary
}

// Plan lays out a column header at tableTop followed by rows data rows and
// the document footer.
func (l Layout) Plan(tableTop float64, rows int) Plan {
	plan := Plan{Pages: 1}
	page := 1
	y := tableTop

	plan.Headers = append(plan.Headers, Placement{Page: page, Y: y})
	y += l.HeaderHeight

	for i := 0; i < rows; i++ {
		if l.NeedsBreak(y) {
			page++
			y = l.Top
			if l.RepeatHeader {
				plan.Headers = append(plan.Headers, Placement{Page: page, Y: y})
				y += l.HeaderHeight
			}
		}
		plan.Rows = append(plan.Rows, Placement{Page: page, Y: y})
		y += l.RowHeight
	}

	footerY := y + l.FooterGap
	if footerY+l.FooterHeight > l.Bottom {
		page++
		footerY = l.Top
	}
	plan.Footer = Placement{Page: page, Y: footerY}
	plan.Pages = page
	return plan
}
