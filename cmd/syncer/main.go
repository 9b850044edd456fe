package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/JCCTorres/toplist-backend-sub001/internal/adapters/bookerville"
	"github.com/JCCTorres/toplist-backend-sub001/internal/adapters/observability"
	redisad "github.com/JCCTorres/toplist-backend-sub001/internal/adapters/redis"
	"github.com/JCCTorres/toplist-backend-sub001/internal/app"
	"github.com/JCCTorres/toplist-backend-sub001/internal/shared"
	mysqlrepo "github.com/JCCTorres/toplist-backend-sub001/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, "syncer")

	log.Info().
		Str("base", cfg.BkvBaseURL).
		Int("workers", cfg.SyncWorkers).
		Msg("syncer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	client, err := bookerville.New(bookerville.Config{
		BaseURL:    cfg.BkvBaseURL,
		Account:    cfg.BkvAccount,
		Secret:     cfg.BkvSecret,
		Timeout:    cfg.BkvTimeout,
		MaxRetries: cfg.BkvRetries,
		RPS:        cfg.BkvRPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("bookerville client init failed")
	}

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewSyncService(client, repo, cache, cfg.SyncWorkers)

	report, err := svc.FullSync(ctx)
	if err != nil {
		// only a failed listing pull aborts the run; per-property
		// failures are counted inside the report
		log.Error().Err(err).Msg("full sync aborted")
		os.Exit(1)
	}
	if cfg.FixFile != "" {
		corrections, err := loadCorrections(cfg.FixFile)
		if err != nil {
			log.Error().Str("file", cfg.FixFile).Err(err).Msg("corrections file unreadable")
			os.Exit(1)
		}
		fix := svc.FixCategories(ctx, corrections)
		log.Info().Int("fixed", fix.Fixed).Int("skipped", fix.Skipped).Int("failed", fix.Failed).Msg("category corrections applied")
	}

	refreshed, err := svc.RefreshClientProperties(ctx, cfg.ClientMaxAge)
	if err != nil {
		log.Warn().Err(err).Msg("client property refresh failed")
	} else if refreshed > 0 {
		log.Info().Int("refreshed", refreshed).Msg("client properties restamped")
	}

	log.Info().
		Int("synced", report.Synced).
		Int("deactivated", report.Deactivated).
		Int("failed", report.Failed).
		Msg("sync completed")
}

func loadCorrections(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
