// Command main runs the database seeder for Wanderlog.
package main

import (
	"flag"
	"log"
	"strings"

	"wanderlog/internal/config"
	"wanderlog/internal/database"
	"wanderlog/internal/seed"
)

func main() {
	preset := flag.String("preset", "", "Built-in profile: "+strings.Join(seed.PresetNames(), ", "))
	profilePath := flag.String("profile", "", "YAML profile file (overrides -preset)")
	numUsers := flag.Int("users", 0, "Override the number of users to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fastHash := flag.Bool("fast-hash", false, "Hash the seed password at bcrypt.MinCost")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing them")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	profile := seed.DefaultProfile()
	switch {
	case *profilePath != "":
		p, err := seed.LoadProfile(*profilePath)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		profile = p
		log.Printf("Using profile file: %s", *profilePath)
	case *preset != "":
		p, ok := seed.Presets[*preset]
		if !ok {
			log.Fatalf("❌ Unknown preset %q (have %s)", *preset, strings.Join(seed.PresetNames(), ", "))
		}
		profile = p
		log.Printf("Applying preset: %s", *preset)
	}
	if *numUsers > 0 {
		profile.Users = *numUsers
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{FastHash: *fastHash, DryRun: *dryRun})
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	if *shouldClean && !*dryRun {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if _, err := s.Run(profile); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.Password)
}
