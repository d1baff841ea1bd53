package main

import (
	"context"
	"database/sql"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"roomsync/internal/adapters/observability"
	redisad "roomsync/internal/adapters/redis"
	"roomsync/internal/adapters/sources"
	"roomsync/internal/app"
	"roomsync/internal/domain"
	"roomsync/internal/shared"
	mysqlrepo "roomsync/internal/storage/mysql"
)

func main() {
	// a shutdown signal cancels ctx and aborts in-flight fetches
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve()

	log.Info().
		Int("workers", cfg.Workers).
		Dur("default_interval", cfg.SyncInterval).
		Msg("syncd starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	client := sources.NewClient(cfg.FetchTimeout, cfg.AdapterRPS)
	adapters := sources.Registry(client, cfg.PropertyID)

	avail := app.NewAvailabilityChecker(repo)
	assigner := app.NewRoomAssigner(repo, avail)
	dispatch := app.NewDispatcher(repo, repo)
	rec := app.NewReconciler(repo, assigner, dispatch)
	orch := app.NewOrchestrator(repo, adapters, rec, repo, cache, cfg.ProbeTimeout, cfg.CacheTTL)

	configs, err := repo.ListSources(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load source configs failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, sc := range configs {
		if !sc.Active {
			log.Info().Str("source", sc.Name).Msg("source inactive, skipping")
			continue
		}
		interval := sc.SyncInterval
		if interval <= 0 {
			interval = cfg.SyncInterval
		}

		wg.Add(1)
		go func(sc domain.SourceConfig, interval time.Duration) {
			defer wg.Done()
			runCycle(ctx, orch, sem, sc.Name)

			t := time.NewTicker(interval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					runCycle(ctx, orch, sem, sc.Name)
				}
			}
		}(sc, interval)
	}

	wg.Wait()
	log.Info().Msg("syncd stopped")
}

func runCycle(ctx context.Context, orch *app.Orchestrator, sem *semaphore.Weighted, name string) {
	// acquire before running; each source's timer waits its turn
	if err := sem.Acquire(ctx, 1); err != nil {
		return // shutting down
	}
	defer sem.Release(1)

	if _, err := orch.SyncSource(ctx, name); err != nil {
		log.Warn().Str("source", name).Err(err).Msg("sync cycle failed")
	}
}
