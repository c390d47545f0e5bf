package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/bahnwerk/core/internal/adapters/snapshotstore"
	"github.com/bahnwerk/core/internal/application/services"
	"github.com/bahnwerk/core/internal/infrastructure/config"
	"github.com/bahnwerk/core/internal/infrastructure/database"
	"github.com/bahnwerk/core/internal/infrastructure/logger"
	"github.com/bahnwerk/core/internal/infrastructure/server"
	"github.com/bahnwerk/core/internal/stations"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Bahnwerk API server",
		Long:  "Start the Bahnwerk API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the snapshot database schema (up, down, version); only relevant for the postgres store driver",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewImportCommand creates the offline import preview command
func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Preview an export file",
		Long:  "Parse a registration export file and print the normalized project candidates as JSON",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runImportPreview(args[0])
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Bahnwerk version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Bahnwerk Core v1.0.0")
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	snapshots, err := snapshotstore.New(*cfg)
	if err != nil {
		appLogger.Fatalw("Failed to initialize snapshot store", "error", err)
	}

	srv, err := server.New(cfg, snapshots, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Fatalw("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Infow("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorw("Shutdown failed", "error", err)
	}
}

func runMigration(direction string) {
	m := newMigrator()
	defer m.Close()

	var err error
	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}
	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration %s failed: %v", direction, err)
	}
	log.Printf("Migration %s completed", direction)
}

func showMigrationVersion() {
	m := newMigrator()
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Fatalf("Failed to read migration version: %v", err)
	}
	log.Printf("Migration version: %d (dirty: %v)", version, dirty)
}

func newMigrator() *migrate.Migrate {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		log.Fatalf("Failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", cfg.Database.Name, driver)
	if err != nil {
		log.Fatalf("Failed to create migrator: %v", err)
	}
	return m
}

func runImportPreview(path string) {
	appLogger := logger.NewNop()

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("file could not be read: %v", err)
	}
	defer file.Close()

	importService := services.NewImportService(nil, stations.Default(), appLogger, nil)
	candidates, err := importService.Preview(file)
	if err != nil {
		log.Fatalf("file could not be read: %v", err)
	}

	out, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode candidates: %v", err)
	}
	fmt.Println(string(out))
}
