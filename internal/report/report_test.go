package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kunjungan/internal/branding"
	"kunjungan/internal/models"
)

// tableTop of the default letterhead: 50 + 22 + 20 + 6 + 14 + 12 + 12 + 18 + 16 + 18.
const letterheadTableTop = 188.0

func TestLayout_FirstPageCapacity(t *testing.T) {
	plan := DefaultLayout(true).Plan(letterheadTableTop, 10)

	require.Len(t, plan.Rows, 10)
	assert.Equal(t, Placement{Page: 1, Y: 213}, plan.Rows[0])
	assert.Equal(t, Placement{Page: 1, Y: 483}, plan.Rows[9])
	assert.Len(t, plan.Headers, 1)
}

func TestLayout_BreakAfterBoundary(t *testing.T) {
	plan := DefaultLayout(true).Plan(letterheadTableTop, 11)

	assert.Equal(t, Placement{Page: 2, Y: 75}, plan.Rows[10])
	require.Len(t, plan.Headers, 2)
	assert.Equal(t, Placement{Page: 2, Y: 50}, plan.Headers[1])
}

func TestLayout_NoRepeatHeader(t *testing.T) {
	plan := DefaultLayout(false).Plan(letterheadTableTop, 11)

	assert.Equal(t, Placement{Page: 2, Y: 50}, plan.Rows[10])
	assert.Len(t, plan.Headers, 1)
}

func TestLayout_RowAtBoundaryStaysOnPage(t *testing.T) {
	l := DefaultLayout(false)
	assert.False(t, l.NeedsBreak(500))
	assert.True(t, l.NeedsBreak(500.5))

	// Continuation pages without header hold rows at 50, 80, ..., 500.
	plan := l.Plan(letterheadTableTop, 10+16)
	assert.Equal(t, Placement{Page: 2, Y: 500}, plan.Rows[25])

	plan = l.Plan(letterheadTableTop, 10+17)
	assert.Equal(t, Placement{Page: 3, Y: 50}, plan.Rows[26])
}

func TestLayout_RowsNeverStartPastBoundary(t *testing.T) {
	for _, repeat := range []bool{true, false} {
		plan := DefaultLayout(repeat).Plan(letterheadTableTop, 120)
		for i, p := range plan.Rows {
			assert.LessOrEqual(t, p.Y, PageBoundary, "row %d", i)
			if i > 0 {
				assert.GreaterOrEqual(t, p.Page, plan.Rows[i-1].Page)
			}
		}
		assert.GreaterOrEqual(t, plan.Footer.Page, plan.Rows[len(plan.Rows)-1].Page)
		assert.Equal(t, plan.Footer.Page, plan.Pages)
	}
}

func TestLayout_FooterMovesToNewPageWhenItDoesNotFit(t *testing.T) {
	l := DefaultLayout(true)

	plan := l.Plan(letterheadTableTop, 3)
	assert.Equal(t, 1, plan.Footer.Page)
	assert.Equal(t, 213+90+footerGap, plan.Footer.Y)
	assert.Equal(t, 1, plan.Pages)

	// Cursor after 10 rows is 513; 513 + 24 + 116 exceeds the bottom margin.
	plan = l.Plan(letterheadTableTop, 10)
	assert.Equal(t, Placement{Page: 2, Y: Margin}, plan.Footer)
	assert.Equal(t, 2, plan.Pages)
}

func TestFitText(t *testing.T) {
	measure := func(s string) float64 { return float64(len([]rune(s))) }

	assert.Equal(t, "short", fitText(measure, "short", 10, "…"))
	assert.Equal(t, "Studi ban…", fitText(measure, "Studi banding kurikulum", 10, "…"))
	assert.Equal(t, "…", fitText(measure, "abcdef", 1, "…"))
}

func TestRowCells(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	tests := []struct {
		name  string
		index int
		visit models.VisitRequest
		want  []string
	}{
		{
			name:  "Approval Date In Office Zone",
			index: 0,
			visit: models.VisitRequest{
				InstitutionName: "SMA Negeri 1 Bandar Lampung",
				Purpose:         "Studi banding",
				VisitorCount:    40,
				ScheduledDate:   models.NewDate(time.Date(2025, time.October, 7, 0, 0, 0, 0, time.UTC)),
				Phone:           "081234567890",
				UpdatedAt:       time.Date(2025, time.September, 30, 20, 0, 0, 0, time.UTC),
			},
			want: []string{"1", "SMA Negeri 1 Bandar Lampung", "Studi banding", "40 org", "7/10/2025", "081234567890", "1/10/2025"},
		},
		{
			name:  "Blank Text Becomes Dash",
			index: 11,
			visit: models.VisitRequest{
				VisitorCount:  1,
				ScheduledDate: models.NewDate(time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)),
				UpdatedAt:     time.Date(2025, time.December, 1, 2, 0, 0, 0, wib),
			},
			want: []string{"12", "-", "-", "1 org", "31/12/2025", "-", "1/12/2025"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rowCells(tt.index, &tt.visit, wib))
		})
	}
}

func TestFitCells_UsesFontMetrics(t *testing.T) {
	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetFont(fontFamily, "", 8)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	measure := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }

	v := approvedVisits(1)[0]
	cells := rowCells(0, &v, time.UTC)
	fitted := fitCells(measure, cells)
	require.Len(t, fitted, len(columns))

	for i, c := range columns {
		assert.LessOrEqual(t, measure(fitted[i]), c.width-2*cellPad, c.title)
	}
	assert.True(t, strings.HasSuffix(fitted[2], ellipsis))
	assert.True(t, strings.HasPrefix(v.Purpose, strings.TrimSuffix(fitted[2], ellipsis)))
	assert.True(t, strings.HasSuffix(fitted[1], ellipsis))
	assert.Equal(t, cells[5], fitted[5], "phone fits")
	assert.Equal(t, "25 org", fitted[3])
}

func TestTotalLine(t *testing.T) {
	assert.Equal(t, "Total Kunjungan Disetujui: 3 kunjungan", totalLine(3))
	assert.Equal(t, "Total Kunjungan Disetujui: 1.204 kunjungan", totalLine(1204))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Rekap_Kunjungan_Oktober_2025.pdf", Filename(2025, time.October))
	assert.Equal(t, "Rekap_Kunjungan_Januari_2026.pdf", Filename(2026, time.January))
}

func approvedVisits(n int) []models.VisitRequest {
	out := make([]models.VisitRequest, n)
	for i := range out {
		out[i] = models.VisitRequest{
			ID:              uint(i + 1),
			InstitutionName: "Universitas Lampung Fakultas Keguruan dan Ilmu Pendidikan",
			Purpose:         strings.Repeat("Studi banding tata kelola aspirasi masyarakat ", 3),
			VisitorCount:    25,
			ScheduledDate:   models.NewDate(time.Date(2025, time.October, 1+i%28, 0, 0, 0, 0, time.UTC)),
			Phone:           "081234567890",
			Email:           "a@b.com",
			Status:          models.VisitStatusApproved,
			UpdatedAt:       time.Date(2025, time.September, 20, 3, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func TestRender_SingleRow(t *testing.T) {
	var buf bytes.Buffer
	stats, err := Render(&buf, 2025, time.October, approvedVisits(1), Options{
		Profile:      branding.Default(),
		Location:     time.UTC,
		Now:          time.Date(2025, time.October, 31, 9, 0, 0, 0, time.UTC),
		RepeatHeader: true,
	})
	require.NoError(t, err)

	assert.Equal(t, Stats{Pages: 1, Rows: 1}, stats)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("%%EOF")))
}

func TestRender_PaginatesLikePlan(t *testing.T) {
	visits := approvedVisits(40)
	plan := DefaultLayout(true).Plan(letterheadTableTop, len(visits))

	var buf bytes.Buffer
	stats, err := Render(&buf, 2025, time.October, visits, Options{RepeatHeader: true})
	require.NoError(t, err)

	assert.Equal(t, plan.Pages, stats.Pages)
	assert.Equal(t, 40, stats.Rows)
}
