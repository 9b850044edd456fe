package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/JCCTorres/toplist-backend-sub001/internal/adapters/bookerville"
	server "github.com/JCCTorres/toplist-backend-sub001/internal/adapters/http_server"
	"github.com/JCCTorres/toplist-backend-sub001/internal/adapters/observability"
	redisad "github.com/JCCTorres/toplist-backend-sub001/internal/adapters/redis"
	"github.com/JCCTorres/toplist-backend-sub001/internal/app"
	"github.com/JCCTorres/toplist-backend-sub001/internal/shared"
	mysqlrepo "github.com/JCCTorres/toplist-backend-sub001/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api")

	observability.Serve()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

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
	tokens := redisad.NewTokenStore(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	h := &server.Handlers{
		Q:       app.NewQueryService(repo, client, cache, cfg.StoreTTL, cfg.LiveTTL),
		Auth:    app.NewAuthService(repo, tokens, cfg.TokenTTL),
		Contact: app.NewContactService(repo),
		Sync:    app.NewSyncService(client, repo, cache, cfg.SyncWorkers),
		Repo:    repo,
	}

	srv := server.New(cfg.AllowedOrigins)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
