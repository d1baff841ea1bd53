package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"roomsync/internal/app"
	"roomsync/internal/domain"
)

func newOrchestrator(store *memStore, adapter domain.SourceAdapter) *app.Orchestrator {
	adapters := map[domain.SourceKind]domain.SourceAdapter{
		domain.KindOTA: adapter,
		domain.KindPMS: adapter,
	}
	return app.NewOrchestrator(store, adapters, newReconciler(store), store, &fakeCache{},
		2*time.Second, time.Minute)
}

func seedSource(t *testing.T, store *memStore, name string, kind domain.SourceKind, active bool) {
	t.Helper()
	err := store.UpsertSource(context.Background(), domain.SourceConfig{
		Name: name, Kind: kind, Endpoint: "http://upstream.test", Active: active,
	})
	if err != nil {
		t.Fatalf("seed source: %v", err)
	}
}

func TestSyncSource_EndToEnd(t *testing.T) {
	store := newMemStore()
	store.addRoom("101", "Deluxe", domain.RoomAvailable)
	store.addRoom("102", "Standard", domain.RoomAvailable)
	seedSource(t, store, "booking_com", domain.KindOTA, true)

	adapter := &fakeAdapter{bookings: []domain.CanonicalBooking{
		canonical("X1", domain.StatusConfirmed),
		{
			ExternalID: "X2", Source: "booking_com",
			GuestEmail: "c@d.com", RoomType: "Standard",
			CheckIn: day(15), CheckOut: day(17),
			Status: domain.StatusConfirmed,
		},
		{Source: "booking_com", Status: domain.StatusConfirmed}, // malformed: no id, no dates
	}}
	orch := newOrchestrator(store, adapter)

	result, err := orch.SyncSource(context.Background(), "booking_com")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if result.Fetched != 3 || result.Created != 2 || result.Updated != 0 || result.Errors != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Created+result.Updated+result.Errors != result.Fetched {
		t.Fatalf("inconsistent counts: %+v", result)
	}
	if len(store.logs) != 1 || store.logs[0].Source != "booking_com" {
		t.Fatalf("expected one sync log entry, got %+v", store.logs)
	}
	var detail app.SyncResult
	if err := json.Unmarshal(store.logs[0].DetailJSON, &detail); err != nil {
		t.Fatalf("log detail: %v", err)
	}
	if detail.Created != 2 || detail.Errors != 1 {
		t.Fatalf("log detail mismatch: %+v", detail)
	}
}

func TestSyncSource_ResyncUpdatesInsteadOfDuplicating(t *testing.T) {
	store := newMemStore()
	store.addRoom("101", "Deluxe", domain.RoomAvailable)
	seedSource(t, store, "booking_com", domain.KindOTA, true)

	adapter := &fakeAdapter{bookings: []domain.CanonicalBooking{canonical("X1", domain.StatusConfirmed)}}
	orch := newOrchestrator(store, adapter)

	if _, err := orch.SyncSource(context.Background(), "booking_com"); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	adapter.bookings = []domain.CanonicalBooking{canonical("X1", domain.StatusCheckedOut)}
	result, err := orch.SyncSource(context.Background(), "booking_com")
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if result.Updated != 1 || result.Created != 0 {
		t.Fatalf("expected pure update cycle, got %+v", result)
	}
	if len(store.reservations) != 1 {
		t.Fatalf("duplicate reservation created")
	}
}

func TestSyncSource_UnknownSource(t *testing.T) {
	orch := newOrchestrator(newMemStore(), &fakeAdapter{})
	_, err := orch.SyncSource(context.Background(), "nope")
	if !errors.Is(err, domain.ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}

func TestSyncSource_InactiveSource(t *testing.T) {
	store := newMemStore()
	seedSource(t, store, "paused", domain.KindPMS, false)
	orch := newOrchestrator(store, &fakeAdapter{})
	_, err := orch.SyncSource(context.Background(), "paused")
	if !errors.Is(err, domain.ErrSourceInactive) {
		t.Fatalf("expected ErrSourceInactive, got %v", err)
	}
}

func TestSyncSource_FetchFailureIsLogged(t *testing.T) {
	store := newMemStore()
	seedSource(t, store, "flaky", domain.KindPMS, true)
	orch := newOrchestrator(store, &fakeAdapter{fetchErr: errors.New("remote 503")})

	_, err := orch.SyncSource(context.Background(), "flaky")
	if err == nil {
		t.Fatalf("expected fetch error")
	}
	if len(store.logs) != 1 || store.logs[0].Success {
		t.Fatalf("expected one failed sync log, got %+v", store.logs)
	}
}

func TestTestConnection_ReportsLatency(t *testing.T) {
	store := newMemStore()
	seedSource(t, store, "booking_com", domain.KindOTA, true)
	orch := newOrchestrator(store, &fakeAdapter{probeLat: 42 * time.Millisecond})

	pr, err := orch.TestConnection(context.Background(), "booking_com")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !pr.OK || pr.LatencyMS != 42 {
		t.Fatalf("unexpected probe result: %+v", pr)
	}
}

func TestTestConnection_ProbeFailure(t *testing.T) {
	store := newMemStore()
	seedSource(t, store, "booking_com", domain.KindOTA, true)
	orch := newOrchestrator(store, &fakeAdapter{probeErr: errors.New("connection refused")})

	pr, err := orch.TestConnection(context.Background(), "booking_com")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if pr.OK || pr.Error == "" {
		t.Fatalf("expected failed probe, got %+v", pr)
	}
}

func TestIntegrationStatus_CountsAndRecentFailures(t *testing.T) {
	store := newMemStore()
	seedSource(t, store, "booking_com", domain.KindOTA, true)
	seedSource(t, store, "legacy_pms", domain.KindPMS, false)
	_ = store.AppendSyncLog(context.Background(), domain.SyncLogEntry{Source: "booking_com", Operation: "sync", Success: false})
	_ = store.AppendSyncLog(context.Background(), domain.SyncLogEntry{Source: "booking_com", Operation: "sync", Success: true})

	orch := newOrchestrator(store, &fakeAdapter{})
	st, err := orch.IntegrationStatus(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if st.TotalSources != 2 || st.ActiveSources != 1 {
		t.Fatalf("unexpected counts: %+v", st)
	}
	if len(st.RecentFailures) != 1 || st.RecentFailures[0].Source != "booking_com" {
		t.Fatalf("unexpected failures: %+v", st.RecentFailures)
	}
}

func TestSetupSource_RejectsUnknownKind(t *testing.T) {
	orch := newOrchestrator(newMemStore(), &fakeAdapter{})
	err := orch.SetupSource(context.Background(), domain.SourceConfig{
		Name: "x", Kind: "spreadsheet", Endpoint: "http://x",
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSetupSource_PersistsWithDefaults(t *testing.T) {
	store := newMemStore()
	orch := newOrchestrator(store, &fakeAdapter{})
	err := orch.SetupSource(context.Background(), domain.SourceConfig{
		Name: "booking_com", Kind: domain.KindOTA, Endpoint: "http://upstream.test", Active: true,
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	cfg, err := store.GetSource(context.Background(), "booking_com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if cfg.SyncInterval != 15*time.Minute {
		t.Fatalf("default interval not applied: %v", cfg.SyncInterval)
	}
}
