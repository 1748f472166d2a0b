package seed

import (
	"fmt"
	"log"
	"sort"
	"time"

	"kunjungan/internal/models"

	"gorm.io/gorm"
)

// Distribution weights the final status of seeded visits.
type Distribution struct {
	Pending  int
	Approved int
	Rejected int
}

var defaultDistribution = Distribution{Pending: 3, Approved: 5, Rejected: 2}

// Presets are named distributions selectable from the seed command.
var Presets = map[string]Distribution{
	"default":  defaultDistribution,
	"backlog":  {Pending: 8, Approved: 1, Rejected: 1},
	"reported": {Pending: 0, Approved: 9, Rejected: 1},
}

// Options configuration for the seeder
type Options struct {
	NumVisits    int
	ShouldClean  bool
	Distribution Distribution
	Factory      FactoryOptions
	// Now anchors the generated schedule; zero means time.Now.
	Now time.Time
}

// Summary reports how many visits of each status were written.
type Summary struct {
	Pending  int
	Approved int
	Rejected int
}

// Total is the number of visits seeded.
func (s Summary) Total() int {
	return s.Pending + s.Approved + s.Rejected
}

// computeCounts splits n by the distribution weights using largest remainder,
// so the parts always add up to n.
func computeCounts(n int, d Distribution) (pending, approved, rejected int) {
	weights := []int{d.Pending, d.Approved, d.Rejected}
	total := 0
	for _, w := range weights {
		total += w
	}
	if n <= 0 {
		return 0, 0, 0
	}
	if total <= 0 {
		return n, 0, 0
	}

	counts := make([]int, len(weights))
	type rem struct{ idx, frac int }
	rems := make([]rem, len(weights))
	assigned := 0
	for i, w := range weights {
		counts[i] = n * w / total
		assigned += counts[i]
		rems[i] = rem{idx: i, frac: n * w % total}
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; assigned < n; i++ {
		counts[rems[i%len(rems)].idx]++
		assigned++
	}
	return counts[0], counts[1], counts[2]
}

// Seed populates the database with demo visit requests. Decided statuses go
// to the earliest scheduled dates so the pending backlog sits in the future.
func Seed(db *gorm.DB, opts Options) (Summary, error) {
	if opts.NumVisits <= 0 {
		opts.NumVisits = 50
	}
	if opts.Distribution == (Distribution{}) {
		opts.Distribution = defaultDistribution
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	log.Printf("🌱 Starting database seeding with %d visits...", opts.NumVisits)

	if opts.ShouldClean && !opts.Factory.DryRun {
		if err := clearData(db); err != nil {
			return Summary{}, fmt.Errorf("failed to clear visits: %w", err)
		}
	}

	f := NewFactory(db, opts.Factory)
	visits := make([]*models.VisitRequest, 0, opts.NumVisits)
	for i := 0; i < opts.NumVisits; i++ {
		visits = append(visits, f.BuildVisit(now))
	}
	sort.SliceStable(visits, func(a, b int) bool {
		return visits[a].ScheduledDate.Before(visits[b].ScheduledDate.Time)
	})

	pending, approved, rejected := computeCounts(opts.NumVisits, opts.Distribution)
	decided := approved + rejected
	f.rng.Shuffle(decided, func(a, b int) { visits[a], visits[b] = visits[b], visits[a] })
	for i, v := range visits {
		switch {
		case i < approved:
			v.Status = models.VisitStatusApproved
		case i < decided:
			v.Status = models.VisitStatusRejected
			reason := f.RejectionReason()
			v.RejectionReason = &reason
		default:
			v.Status = models.VisitStatusPending
		}
		if v.Status != models.VisitStatusPending {
			v.UpdatedAt = v.CreatedAt.Add(time.Duration(f.rng.Intn(72)+1) * time.Hour)
		}
	}

	if err := f.CreateVisitsBatch(visits); err != nil {
		return Summary{}, fmt.Errorf("failed to create visits: %w", err)
	}

	summary := Summary{Pending: pending, Approved: approved, Rejected: rejected}
	log.Printf("✓ %d visits created (%d pending, %d approved, %d rejected)",
		summary.Total(), summary.Pending, summary.Approved, summary.Rejected)
	return summary, nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing visits...")
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.VisitRequest{}).Error
}
