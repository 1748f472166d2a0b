package models

// PeriodSummary is one (year, month) bucket of approved visits.
type PeriodSummary struct {
	Year  int    `json:"tahun"`
	Month int    `json:"bulan"`
	Count int64  `json:"jumlah"`
	Label string `json:"label"`
}
