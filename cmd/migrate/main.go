package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cigno/platform/internal/config"
	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/logger"
	"github.com/cigno/platform/internal/migrate"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "List pending migrations without applying them")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(os.Stderr, logger.Options{Level: cfg.Log.Level})

	migrations, err := migrate.Load()
	if err != nil {
		log.Error("failed to load migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.ConnectSurreal(ctx, database.Config{
		URL:       cfg.Database.URL,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
	})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	res, err := migrate.NewRunner(db, migrations, log).Up(ctx, *dryRun)
	if err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		_ = db.Close()
		os.Exit(1)
	}

	verb := "applied"
	if res.DryRun {
		verb = "pending"
	}
	for _, m := range res.Applied {
		fmt.Printf("%-8s %04d_%s\n", verb, m.Version, m.Name)
	}
	fmt.Printf("%d %s, %d already applied\n", len(res.Applied), verb, len(res.Skipped))
}
