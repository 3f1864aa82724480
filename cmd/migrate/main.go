package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"

	"github.com/harvesthub/marketplace/internal/config"
	"github.com/harvesthub/marketplace/internal/repository/postgres"
)

func main() {
	pathFlag := flag.String("path", "", "Migrations directory (defaults to DB_MIGRATIONS_PATH or ./migrations)")
	stepsFlag := flag.Int("steps", 0, "With down: number of migrations to roll back (0 rolls back everything)")
	flag.Usage = func() {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/migrate [--path migrations] up")
		fmt.Println("  go run ./cmd/migrate [--steps N] down")
		fmt.Println("  go run ./cmd/migrate version")
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	_ = godotenv.Load(".env")

	cfg, err := config.LoadDatabase()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *pathFlag != "" {
		cfg.MigrationsPath = *pathFlag
	}

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	m, err := postgres.NewMigrator(db, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	switch command {
	case "up":
		err = m.Up()
	case "down":
		if *stepsFlag > 0 {
			err = m.Steps(-*stepsFlag)
		} else {
			err = m.Down()
		}
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied")
			return
		}
		if verr != nil {
			fmt.Fprintf(os.Stderr, "Failed to read version: %v\n", verr)
			os.Exit(1)
		}
		fmt.Printf("Version %d (dirty: %t)\n", version, dirty)
		return
	default:
		flag.Usage()
		os.Exit(1)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to apply")
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration %s failed: %v\n", command, err)
		os.Exit(1)
	}

	fmt.Printf("Migration %s completed successfully!\n", command)
}
