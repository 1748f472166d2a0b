package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"kunjungan/internal/branding"
	"kunjungan/internal/locale"
	"kunjungan/internal/models"
)

const (
	fontFamily = "Helvetica"
	ellipsis   = "…"
	cellPad    = 5.0
	signatureX = 550.0
)

type rgb struct{ r, g, b int }

var (
	colorHeaderFill = rgb{0x1e, 0x3a, 0x8a}
	colorRowShade   = rgb{0xf3, 0xf4, 0xf6}
	colorRowBorder  = rgb{0xcb, 0xd5, 0xe1}
	colorBlack      = rgb{0, 0, 0}
	colorWhite      = rgb{0xff, 0xff, 0xff}
)

type column struct {
	title string
	width float64
	align string
	// clip truncates overlong text to the column width.
	clip bool
}

var columns = []column{
	{title: "NO", width: 30, align: "C"},
	{title: "NAMA INSTITUSI", width: 140, align: "L", clip: true},
	{title: "KEBUTUHAN", width: 150, align: "L", clip: true},
	{title: "JUMLAH", width: 50, align: "C"},
	{title: "JADWAL", width: 70, align: "C"},
	{title: "TELEPON", width: 80, align: "L", clip: true},
	{title: "DISETUJUI", width: 80, align: "C"},
}

func tableWidth() float64 {
	var w float64
	for _, c := range columns {
		w += c.width
	}
	return w
}

// Options configures one rendering.
type Options struct {
	Profile      *branding.Profile
	Location     *time.Location
	Now          time.Time
	RepeatHeader bool
}

// Stats describes a rendered document.
type Stats struct {
	Pages int
	Rows  int
}

// Filename is the download name of the recap for a month.
func Filename(year int, month time.Month) string {
	return fmt.Sprintf("Rekap_Kunjungan_%s_%d.pdf", locale.MonthName(month), year)
}

// Render writes the recap of visits for year/month to w. visits must already
// be ordered by scheduled date.
func Render(w io.Writer, year int, month time.Month, visits []models.VisitRequest, opts Options) (Stats, error) {
	if opts.Profile == nil {
		opts.Profile = branding.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("kunjungan", true)
	pdf.SetTitle("Rekap Kunjungan "+locale.MonthYear(year, month), true)
	pdf.SetCreationDate(opts.Now)

	d := &document{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		opts: opts,
	}

	pdf.AddPage()
	tableTop := d.letterhead(year, month)
	plan := DefaultLayout(opts.RepeatHeader).Plan(tableTop, len(visits))

	page := 1
	d.headersOn(plan, page)
	for i := range visits {
		p := plan.Rows[i]
		page = d.advanceTo(plan, page, p.Page)
		d.dataRow(p.Y, i, &visits[i])
	}
	page = d.advanceTo(plan, page, plan.Footer.Page)
	d.footer(plan.Footer.Y, len(visits))

	if err := pdf.Error(); err != nil {
		return Stats{}, fmt.Errorf("render recap: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return Stats{}, fmt.Errorf("write recap: %w", err)
	}
	return Stats{Pages: page, Rows: len(visits)}, nil
}

type document struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	opts Options
}

func (d *document) setFill(c rgb) { d.pdf.SetFillColor(c.r, c.g, c.b) }
func (d *document) setDraw(c rgb) { d.pdf.SetDrawColor(c.r, c.g, c.b) }
func (d *document) setText(c rgb) { d.pdf.SetTextColor(c.r, c.g, c.b) }

func (d *document) contentWidth() float64 { return PageWidth - 2*Margin }

func (d *document) measure(s string) float64 {
	return d.pdf.GetStringWidth(d.tr(s))
}

// advanceTo adds pages until target is the current page, drawing the column
// headers planned for each new page.
func (d *document) advanceTo(plan Plan, current, target int) int {
	for current < target {
		d.pdf.AddPage()
		current++
		d.headersOn(plan, current)
	}
	return current
}

func (d *document) headersOn(plan Plan, page int) {
	for _, h := range plan.Headers {
		if h.Page == page {
			d.headerRow(h.Y)
		}
	}
}

func (d *document) centered(y, h float64, style string, size float64, text string) float64 {
	d.pdf.SetFont(fontFamily, style, size)
	d.pdf.SetXY(Margin, y)
	d.pdf.CellFormat(d.contentWidth(), h, d.tr(text), "", 0, "C", false, 0, "")
	return y + h
}

// letterhead draws the office band and title and returns the table top.
func (d *document) letterhead(year int, month time.Month) float64 {
	p := d.opts.Profile
	y := Margin

	sizes := []float64{18, 16}
	for i, line := range p.Letterhead {
		size := 16.0
		if i < len(sizes) {
			size = sizes[i]
		}
		y = d.centered(y, size+4, "B", size, line)
	}
	y += 6
	y = d.centered(y, 14, "", 10, p.Address)
	y += 12

	d.setDraw(colorBlack)
	d.pdf.SetLineWidth(2)
	d.pdf.Line(Margin, y, PageWidth-Margin, y)
	d.pdf.SetLineWidth(0.5)
	y += 12

	y = d.centered(y, 18, "B", 14, p.ReportTitle)
	y = d.centered(y, 16, "B", 12, "Bulan "+locale.MonthYear(year, month))
	return y + 18
}

func (d *document) headerRow(y float64) {
	d.setFill(colorHeaderFill)
	d.setDraw(colorBlack)
	d.pdf.Rect(Margin, y, tableWidth(), HeaderRowHeight, "FD")

	d.pdf.SetFont(fontFamily, "B", 9)
	d.setText(colorWhite)
	x := Margin
	for _, c := range columns {
		d.pdf.SetXY(x+cellPad, y)
		d.pdf.CellFormat(c.width-2*cellPad, HeaderRowHeight, c.title, "", 0, c.align, false, 0, "")
		x += c.width
	}
	d.setText(colorBlack)
}

// rowCells formats one visit as the table cells, left to right. The approval
// date is the last update, shown in loc.
func rowCells(index int, v *models.VisitRequest, loc *time.Location) []string {
	updated := v.UpdatedAt
	if !updated.IsZero() {
		updated = updated.In(loc)
	}
	return []string{
		strconv.Itoa(index + 1),
		orDash(v.InstitutionName),
		orDash(v.Purpose),
		fmt.Sprintf("%d org", v.VisitorCount),
		locale.ShortDate(v.ScheduledDate.Time),
		orDash(v.Phone),
		locale.ShortDate(updated),
	}
}

// fitCells clips the cells of clipping columns to their inner width.
func fitCells(measure func(string) float64, cells []string) []string {
	out := make([]string, len(cells))
	for i, value := range cells {
		if c := columns[i]; c.clip {
			value = fitText(measure, value, c.width-2*cellPad, ellipsis)
		}
		out[i] = value
	}
	return out
}

func totalLine(total int) string {
	return fmt.Sprintf("Total Kunjungan Disetujui: %s kunjungan", locale.Number(int64(total)))
}

func (d *document) dataRow(y float64, index int, v *models.VisitRequest) {
	if index%2 == 0 {
		d.setFill(colorRowShade)
		d.pdf.Rect(Margin, y, tableWidth(), RowHeight, "F")
	}

	d.pdf.SetFont(fontFamily, "", 8)
	d.setText(colorBlack)
	x := Margin
	for i, value := range fitCells(d.measure, rowCells(index, v, d.opts.Location)) {
		c := columns[i]
		d.pdf.SetXY(x+cellPad, y)
		d.pdf.CellFormat(c.width-2*cellPad, RowHeight, d.tr(value), "", 0, c.align, false, 0, "")
		x += c.width
	}

	d.setDraw(colorRowBorder)
	d.pdf.Rect(Margin, y, tableWidth(), RowHeight, "D")
}

func (d *document) footer(y float64, total int) {
	p := d.opts.Profile

	d.pdf.SetFont(fontFamily, "B", 10)
	d.pdf.SetXY(Margin, y)
	d.pdf.CellFormat(0, 14, d.tr(totalLine(total)), "", 0, "L", false, 0, "")
	y += 14 + footerGap

	today := locale.LongDate(d.opts.Now.In(d.opts.Location))
	d.pdf.SetFont(fontFamily, "", 9)
	d.pdf.SetXY(signatureX, y)
	d.pdf.CellFormat(0, 12, d.tr(p.City+", "+today), "", 0, "L", false, 0, "")
	y += 18

	d.pdf.SetFont(fontFamily, "B", 9)
	d.pdf.SetXY(signatureX, y)
	d.pdf.CellFormat(0, 12, d.tr(p.SignatoryTitle), "", 0, "L", false, 0, "")
	y += 48

	d.pdf.SetXY(signatureX, y)
	d.pdf.CellFormat(0, 12, "_____________________", "", 0, "L", false, 0, "")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// fitText shortens s until it fits width, appending tail. Strings that
// already fit are returned unchanged.
func fitText(measure func(string) float64, s string, width float64, tail string) string {
	if measure(s) <= width {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + tail
		if measure(candidate) <= width {
			return candidate
		}
	}
	return tail
}
