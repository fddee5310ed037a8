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
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/tryDmitriyCatch/crypto-api/internal/api"
	"github.com/tryDmitriyCatch/crypto-api/internal/asset"
	"github.com/tryDmitriyCatch/crypto-api/internal/config"
	"github.com/tryDmitriyCatch/crypto-api/internal/database"
	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
	"github.com/tryDmitriyCatch/crypto-api/internal/exchange"
	"github.com/tryDmitriyCatch/crypto-api/internal/user"
	"github.com/tryDmitriyCatch/crypto-api/internal/valuation"
	"github.com/tryDmitriyCatch/crypto-api/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	app := &cli.App{
		Name:           "crypto-api",
		Usage:          "user and crypto asset API with live USD valuations",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run database migrations and start the HTTP API",
				Action: serve,
			},
			{
				Name:   "seed",
				Usage:  "create test users with sample assets and print their tokens",
				Action: seed,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	pool, err := setupDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	rateClient := exchange.NewClient(cfg.CoinAPIURL, cfg.CoinAPIKey, cfg.RateRetryMax, cfg.RateRetryBaseDelay, cfg.MaxRedirects)
	rateCache := exchange.NewCache(rateClient, cfg.RateCacheTTL)
	valuationSvc := valuation.NewService(rateCache)

	userSvc := user.NewService(user.NewPgRepository(pool))
	assetSvc := asset.NewService(asset.NewPgRepository(pool))

	if cfg.RateRefreshInterval > 0 {
		rateWorker := worker.NewRateWorker(rateCache, cfg.RateRefreshInterval)
		go rateWorker.Run(ctx)
	}

	srv := api.NewServer(cfg.HTTPPort, userSvc, assetSvc, valuationSvc)

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

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

// seed creates six test users, each holding a small sample portfolio, and
// prints the access tokens to use as the `token` request parameter.
func seed(c *cli.Context) error {
	ctx := c.Context

	cfg := config.Load()

	pool, err := setupDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	userSvc := user.NewService(user.NewPgRepository(pool))
	assetSvc := asset.NewService(asset.NewPgRepository(pool))

	samples := []struct {
		label    string
		currency domain.Currency
		amount   string
	}{
		{"cold wallet", domain.CurrencyBTC, "1.99"},
		{"staking pool", domain.CurrencyETH, "12.50"},
		{"exchange balance", domain.CurrencyIOTA, "1500.00"},
	}

	for i := 1; i <= 6; i++ {
		name := fmt.Sprintf("Test%d", i)
		u, err := userSvc.Register(ctx, name, "User", fmt.Sprintf("test%d@example.com", i), "password")
		if err != nil {
			return fmt.Errorf("seeding user %s: %w", name, err)
		}

		for _, s := range samples {
			amount, err := decimal.NewFromString(s.amount)
			if err != nil {
				return fmt.Errorf("parsing sample amount %q: %w", s.amount, err)
			}
			if _, err := assetSvc.Create(ctx, u.ID, s.label, s.currency, amount); err != nil {
				return fmt.Errorf("seeding asset for %s: %w", name, err)
			}
		}

		fmt.Printf("%s %s token=%s\n", u.Name, u.Email, u.Token)
	}

	return nil
}

func setupDatabase(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
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
