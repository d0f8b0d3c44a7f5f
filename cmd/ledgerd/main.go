package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/cardvault/ledger/internal/api"
	"github.com/cardvault/ledger/internal/config"
	"github.com/cardvault/ledger/internal/currency"
	"github.com/cardvault/ledger/internal/database"
	"github.com/cardvault/ledger/internal/export"
	ledgerpkg "github.com/cardvault/ledger/internal/ledger"
	"github.com/cardvault/ledger/internal/pricesource"
	"github.com/cardvault/ledger/internal/snapshot"
	"github.com/cardvault/ledger/internal/valuation"
	"github.com/cardvault/ledger/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	app := &cli.App{
		Name:  "ledgerd",
		Usage: "card collection valuation and transaction ledger service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and background workers",
				Action: runServe,
			},
			{
				Name:  "export",
				Usage: "write an owner's ledger and stats to an xlsx workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Usage: "owner id to export", Required: true},
					&cli.StringFlag{Name: "out", Usage: "output file path", Value: "ledger.xlsx"},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func connect(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return pool, nil
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Pricing pipeline
	catalog := pricesource.NewHTTPCatalogClient(cfg.CatalogURL, cfg.CatalogRetryBaseDelay, cfg.CatalogRetryMax)
	resolver := pricesource.NewResolver(catalog)
	calculator := valuation.NewCalculator(resolver)

	// Exchange rates
	ratesClient := currency.NewRatesClient(cfg.RatesURL, cfg.RatesRetryBaseDelay, cfg.RatesRetryMax)
	currencySvc := currency.NewService(ratesClient, currency.NewPgRateRepository(pool))

	// Ledger and snapshots
	ledgerRepo := ledgerpkg.NewPgRepository(pool)
	ledgerSvc := ledgerpkg.NewService(ledgerRepo)
	snapshotSvc := snapshot.NewService(ledgerSvc, snapshot.NewPgRepository(pool))

	// Optional sheets export after each snapshot run
	var hook worker.AfterSnapshotHook
	if cfg.SheetsSpreadsheetID != "" && cfg.SheetsCredentialsJSON != "" {
		writer, err := export.NewSheetsWriter(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsCredentialsJSON)
		if err != nil {
			return fmt.Errorf("creating sheets writer: %w", err)
		}
		hook = export.NewService(writer)
	}

	// Start workers
	rateWorker := worker.NewRateWorker(currencySvc, cfg.RateWorkerInterval)
	go rateWorker.Run(ctx)

	snapshotWorker := worker.NewSnapshotWorker(snapshotSvc, ledgerRepo, cfg.SnapshotWorkerInterval, hook)
	go snapshotWorker.Run(ctx)

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, generate endpoint is unprotected")
	}

	// Start HTTP server
	srv := api.NewServer(cfg.HTTPPort, calculator, currencySvc, ledgerSvc, snapshotSvc, cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runExport(c *cli.Context) error {
	ctx := c.Context
	cfg := config.Load()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	ownerID := c.String("owner")
	out := c.String("out")

	entries, err := ledgerpkg.NewPgRepository(pool).List(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("loading ledger for %s: %w", ownerID, err)
	}

	stats := ledgerpkg.Stats(entries)
	if err := export.WriteWorkbook(out, ownerID, entries, stats); err != nil {
		return err
	}

	log.Printf("Exported %d entries for %s to %s", len(entries), ownerID, out)
	return nil
}
