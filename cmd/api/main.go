package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "roomsync/internal/adapters/http_server"
	"roomsync/internal/adapters/observability"
	redisad "roomsync/internal/adapters/redis"
	"roomsync/internal/adapters/sources"
	"roomsync/internal/app"
	"roomsync/internal/shared"
	mysqlrepo "roomsync/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	client := sources.NewClient(cfg.FetchTimeout, cfg.AdapterRPS)
	adapters := sources.Registry(client, cfg.PropertyID)

	avail := app.NewAvailabilityChecker(repo)
	assigner := app.NewRoomAssigner(repo, avail)
	dispatch := app.NewDispatcher(repo, repo)
	rec := app.NewReconciler(repo, assigner, dispatch)
	orch := app.NewOrchestrator(repo, adapters, rec, repo, cache, cfg.ProbeTimeout, cfg.CacheTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{O: orch})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
