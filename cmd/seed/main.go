// Command main runs the visit request seeder.
package main

import (
	"flag"
	"log"
	"sort"
	"strings"

	"kunjungan/internal/config"
	"kunjungan/internal/database"
	"kunjungan/internal/seed"
)

func main() {
	numVisits := flag.Int("visits", 60, "Number of visit requests to create")
	shouldClean := flag.Bool("clean", false, "Delete existing visit requests before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate without writing to the database")
	maxDays := flag.Int("max-days", 180, "Spread scheduled dates this many days into the past")
	preset := flag.String("preset", "default", "Status distribution preset")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = time based)")
	flag.Parse()

	dist, ok := seed.Presets[*preset]
	if !ok {
		names := make([]string, 0, len(seed.Presets))
		for name := range seed.Presets {
			names = append(names, name)
		}
		sort.Strings(names)
		log.Fatalf("unknown preset %q (available: %s)", *preset, strings.Join(names, ", "))
	}

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d visits, preset=%s, clean=%v, dry-run=%v\n", *numVisits, *preset, *shouldClean, *dryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("❌ Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if _, err := seed.Seed(db, seed.Options{
		NumVisits:    *numVisits,
		ShouldClean:  *shouldClean,
		Distribution: dist,
		Factory: seed.FactoryOptions{
			DryRun:   *dryRun,
			MaxDays:  *maxDays,
			RandSeed: *randSeed,
		},
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo visits.")
}
