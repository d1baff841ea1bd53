package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"roomsync/internal/adapters/observability"
	"roomsync/internal/domain"
)

const statusCacheKey = "integrations:status"

type SyncResult struct {
	Source  string `json:"source"`
	RunID   string `json:"run_id"`
	Fetched int    `json:"fetched"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Errors  int    `json:"errors"`
	Summary string `json:"summary"`
}

type ProbeResult struct {
	Source    string `json:"source"`
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type IntegrationStatus struct {
	TotalSources   int                   `json:"total_sources"`
	ActiveSources  int                   `json:"active_sources"`
	RecentFailures []domain.SyncLogEntry `json:"recent_failures"`
}

// Orchestrator runs sync cycles per configured source and exposes the
// operational surface: SyncSource, TestConnection, IntegrationStatus,
// SetupSource. Cycles for the same source are serialized by a per-name lock;
// the storage layer's unique key on (source, external_id) backstops the rest.
type Orchestrator struct {
	sources  domain.SourceStore
	adapters map[domain.SourceKind]domain.SourceAdapter
	rec      *Reconciler
	logs     domain.SyncLogStore
	cache    domain.Cache
	probeTO  time.Duration
	cacheTTL time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOrchestrator(
	sources domain.SourceStore,
	adapters map[domain.SourceKind]domain.SourceAdapter,
	rec *Reconciler,
	logs domain.SyncLogStore,
	cache domain.Cache,
	probeTimeout, cacheTTL time.Duration,
) *Orchestrator {
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &Orchestrator{
		sources:  sources,
		adapters: adapters,
		rec:      rec,
		logs:     logs,
		cache:    cache,
		probeTO:  probeTimeout,
		cacheTTL: cacheTTL,
		locks:    map[string]*sync.Mutex{},
	}
}

func (o *Orchestrator) sourceLock(name string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[name]
	if !ok {
		l = &sync.Mutex{}
		o.locks[name] = l
	}
	return l
}

// SyncSource runs one fetch-normalize-reconcile-log cycle for the named
// source. One malformed record never aborts the batch; a transport failure
// aborts only this source's cycle.
func (o *Orchestrator) SyncSource(ctx context.Context, name string) (SyncResult, error) {
	cfg, err := o.sources.GetSource(ctx, name)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: %s", domain.ErrUnknownSource, name)
	}
	if !cfg.Active {
		return SyncResult{}, fmt.Errorf("%w: %s", domain.ErrSourceInactive, name)
	}
	adapter, ok := o.adapters[cfg.Kind]
	if !ok {
		return SyncResult{}, fmt.Errorf("no adapter for kind %q", cfg.Kind)
	}

	lock := o.sourceLock(name)
	lock.Lock()
	defer lock.Unlock()

	result := SyncResult{Source: name, RunID: uuid.NewString()}
	start := time.Now()

	bookings, err := adapter.Fetch(ctx, cfg)
	if err != nil {
		result.Errors = 1
		result.Summary = fmt.Sprintf("fetch failed: %v", err)
		o.appendLog(ctx, cfg.Name, result, false)
		observability.ObserveSyncCycle(name, "fetch_error")
		return result, fmt.Errorf("fetch %s: %w", name, err)
	}
	result.Fetched = len(bookings)

	for _, cb := range bookings {
		if cb.ExternalID == "" || cb.CheckIn.IsZero() || cb.CheckOut.IsZero() || !cb.CheckIn.Before(cb.CheckOut) {
			// malformed canonical shape: counted, never silently dropped
			result.Errors++
			log.Warn().Str("source", name).Str("external_id", cb.ExternalID).
				Msg("malformed canonical booking skipped")
			continue
		}
		rr, rerr := o.rec.Reconcile(ctx, cb)
		if rerr != nil {
			result.Errors++
			log.Warn().Str("source", name).Str("external_id", cb.ExternalID).
				Err(rerr).Msg("reconcile failed")
			continue
		}
		if rr.IsNew {
			result.Created++
		} else {
			result.Updated++
		}
	}

	result.Summary = fmt.Sprintf("fetched=%d created=%d updated=%d errors=%d in %s",
		result.Fetched, result.Created, result.Updated, result.Errors,
		time.Since(start).Round(time.Millisecond))

	o.appendLog(ctx, cfg.Name, result, result.Errors == 0)
	observability.ObserveSyncRecords(name, result.Created, result.Updated, result.Errors)
	observability.ObserveSyncCycle(name, "completed")

	if o.cache != nil {
		_ = o.cache.Del(ctx, statusCacheKey)
	}
	log.Info().Str("source", name).Str("run_id", result.RunID).Str("summary", result.Summary).Msg("sync cycle done")
	return result, nil
}

func (o *Orchestrator) appendLog(ctx context.Context, source string, r SyncResult, success bool) {
	detail, _ := json.Marshal(r)
	if err := o.logs.AppendSyncLog(ctx, domain.SyncLogEntry{
		Source:     source,
		Operation:  "sync",
		RunID:      r.RunID,
		DetailJSON: detail,
		Success:    success,
	}); err != nil {
		log.Error().Err(err).Str("source", source).Msg("append sync log failed")
	}
}

// TestConnection probes the source endpoint with a bounded timeout and
// reports latency. It never reads or writes reservation data.
func (o *Orchestrator) TestConnection(ctx context.Context, name string) (ProbeResult, error) {
	cfg, err := o.sources.GetSource(ctx, name)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("%w: %s", domain.ErrUnknownSource, name)
	}
	adapter, ok := o.adapters[cfg.Kind]
	if !ok {
		return ProbeResult{}, fmt.Errorf("no adapter for kind %q", cfg.Kind)
	}

	pctx, cancel := context.WithTimeout(ctx, o.probeTO)
	defer cancel()

	pr := ProbeResult{Source: name}
	lat, err := adapter.Probe(pctx, cfg)
	pr.LatencyMS = lat.Milliseconds()
	if err != nil {
		pr.Error = err.Error()
	} else {
		pr.OK = true
	}
	if o.cache != nil {
		_ = o.cache.Set(ctx, "probe:"+name, pr, int(o.cacheTTL.Seconds()))
	}
	return pr, nil
}

// IntegrationStatus aggregates source counts and the ten most recent failed
// cycles across all sources.
func (o *Orchestrator) IntegrationStatus(ctx context.Context) (IntegrationStatus, error) {
	var st IntegrationStatus
	if o.cache != nil {
		if ok, _ := o.cache.Get(ctx, statusCacheKey, &st); ok {
			return st, nil
		}
	}

	cfgs, err := o.sources.ListSources(ctx)
	if err != nil {
		return IntegrationStatus{}, err
	}
	st.TotalSources = len(cfgs)
	for _, c := range cfgs {
		if c.Active {
			st.ActiveSources++
		}
	}
	fails, err := o.logs.RecentFailures(ctx, 10)
	if err != nil {
		return IntegrationStatus{}, err
	}
	st.RecentFailures = fails

	if o.cache != nil {
		_ = o.cache.Set(ctx, statusCacheKey, st, int(o.cacheTTL.Seconds()))
	}
	return st, nil
}

// SetupSource validates and persists a source configuration, keyed by name.
func (o *Orchestrator) SetupSource(ctx context.Context, cfg domain.SourceConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if !cfg.Kind.Valid() {
		return fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
	if cfg.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = 15 * time.Minute
	}
	if err := o.sources.UpsertSource(ctx, cfg); err != nil {
		return err
	}
	if o.cache != nil {
		_ = o.cache.Del(ctx, statusCacheKey)
	}
	return nil
}
