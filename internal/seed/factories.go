// Package seed provides helpers to create demo visit requests for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"kunjungan/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// FactoryOptions tunes how visits are generated and stored.
type FactoryOptions struct {
	// DryRun assigns synthetic ids instead of writing to the database.
	DryRun bool
	// MaxDays bounds how far back scheduled dates are spread.
	MaxDays int
	// AheadDays bounds how far forward scheduled dates are spread.
	AheadDays int
	// BatchSize is the insert chunk size for CreateVisitsBatch.
	BatchSize int
	// RandSeed makes generation reproducible when non-zero.
	RandSeed int64
}

// Factory builds visit requests and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  FactoryOptions
	faker *gofakeit.Faker
	// #nosec G404: acceptable for seeding
	rng *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

var (
	schoolKinds = []string{"SD Negeri", "SMP Negeri", "SMA Negeri", "SMK Negeri", "MAN"}
	campuses    = []string{
		"Universitas Lampung", "Universitas Islam Negeri Raden Intan", "Institut Teknologi Sumatera",
		"Universitas Bandar Lampung", "Universitas Malahayati", "Politeknik Negeri Lampung",
	}
	regions = []string{
		"Bandar Lampung", "Metro", "Lampung Selatan", "Lampung Tengah", "Lampung Utara",
		"Lampung Timur", "Pringsewu", "Pesawaran", "Tanggamus", "Way Kanan", "Tulang Bawang",
	}
	purposes = []string{
		"Studi banding tata tertib persidangan",
		"Kunjungan edukasi mengenal fungsi legislatif",
		"Audiensi penyampaian aspirasi masyarakat",
		"Koordinasi program kerja daerah",
		"Observasi penyusunan peraturan daerah",
		"Kunjungan kerja dan konsultasi anggaran",
	}
	rejectionReasons = []string{
		"Jadwal bertepatan dengan rapat paripurna",
		"Ruang pertemuan sedang digunakan",
		"Mohon lengkapi surat pengantar resmi",
		"Kuota kunjungan pada tanggal tersebut sudah penuh",
	}
)

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts FactoryOptions) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 180
	}
	if opts.AheadDays <= 0 {
		opts.AheadDays = 45
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404
		nextID: 1000,
	}
}

// Institution returns a plausible Lampung school, campus or agency name.
func (f *Factory) Institution() string {
	switch f.rng.Intn(3) {
	case 0:
		kind := schoolKinds[f.rng.Intn(len(schoolKinds))]
		return fmt.Sprintf("%s %d %s", kind, f.rng.Intn(20)+1, regions[f.rng.Intn(len(regions))])
	case 1:
		return campuses[f.rng.Intn(len(campuses))]
	default:
		return "DPRD Kabupaten " + regions[f.rng.Intn(len(regions))]
	}
}

// Phone returns an Indonesian mobile number in the 08xx form.
func (f *Factory) Phone() string {
	return fmt.Sprintf("08%d%s", f.rng.Intn(9)+1, f.faker.Numerify("#########"))
}

// WorkingDay returns a Monday to Friday date within the configured spread
// around now.
func (f *Factory) WorkingDay(now time.Time) time.Time {
	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := f.rng.Intn(f.opts.MaxDays+f.opts.AheadDays+1) - f.opts.MaxDays
	d := base.AddDate(0, 0, offset)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// RejectionReason picks one of the canned reasons an admin would give.
func (f *Factory) RejectionReason() string {
	return rejectionReasons[f.rng.Intn(len(rejectionReasons))]
}

// BuildVisit constructs a pending visit scheduled around now but does not
// persist it. Useful for batching.
func (f *Factory) BuildVisit(now time.Time, overrides ...func(*models.VisitRequest)) *models.VisitRequest {
	visit := &models.VisitRequest{
		InstitutionName: f.Institution(),
		Purpose:         purposes[f.rng.Intn(len(purposes))] + ". " + f.faker.Sentence(8),
		VisitorCount:    f.rng.Intn(60) + 5,
		ScheduledDate:   models.NewDate(f.WorkingDay(now)),
		Phone:           f.Phone(),
		Email:           f.faker.Email(),
		Status:          models.VisitStatusPending,
	}
	created := visit.ScheduledDate.Time.AddDate(0, 0, -(f.rng.Intn(14) + 1))
	if created.After(now) {
		created = now
	}
	visit.CreatedAt = created
	visit.UpdatedAt = created

	for _, override := range overrides {
		override(visit)
	}
	return visit
}

// CreateVisit persists one visit built by BuildVisit.
func (f *Factory) CreateVisit(now time.Time, overrides ...func(*models.VisitRequest)) (*models.VisitRequest, error) {
	visit := f.BuildVisit(now, overrides...)
	if f.opts.DryRun {
		f.nextID++
		visit.ID = f.nextID
		log.Printf("[dry-run] CreateVisit: %s on %s", visit.InstitutionName, visit.ScheduledDate)
		return visit, nil
	}
	if err := f.db.Create(visit).Error; err != nil {
		return nil, err
	}
	return visit, nil
}

// CreateVisitsBatch persists multiple visits in chunked inserts.
func (f *Factory) CreateVisitsBatch(visits []*models.VisitRequest) error {
	if len(visits) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, v := range visits {
			f.nextID++
			v.ID = f.nextID
		}
		log.Printf("[dry-run] CreateVisitsBatch: %d visits (no DB write)", len(visits))
		return nil
	}
	return f.db.CreateInBatches(visits, f.opts.BatchSize).Error
}
