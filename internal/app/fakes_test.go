package app_test

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"roomsync/internal/domain"
)

// memStore is an in-memory stand-in for every storage port, mirroring the
// single-repo shape of the MySQL implementation.
type memStore struct {
	mu           sync.Mutex
	nextID       int64
	reservations map[int64]domain.Reservation
	rooms        map[int64]domain.Room
	tasks        []domain.HousekeepingTask
	sources      map[string]domain.SourceConfig
	logs         []domain.SyncLogEntry
}

func newMemStore() *memStore {
	return &memStore{
		reservations: map[int64]domain.Reservation{},
		rooms:        map[int64]domain.Room{},
		sources:      map[string]domain.SourceConfig{},
	}
}

func (s *memStore) id() int64 { s.nextID++; return s.nextID }

func (s *memStore) addRoom(number, roomType string, status domain.RoomStatus) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.rooms[id] = domain.Room{ID: id, Number: number, Type: roomType, Status: status}
	return id
}

// ---- ReservationStore ----

func (s *memStore) Create(ctx context.Context, r *domain.Reservation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Source != nil && r.ExternalID != nil {
		for _, ex := range s.reservations {
			if ex.Source != nil && ex.ExternalID != nil && *ex.Source == *r.Source && *ex.ExternalID == *r.ExternalID {
				return 0, domain.ErrDuplicateKey
			}
		}
	}
	id := s.id()
	r.ID = id
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	s.reservations[id] = *r
	return id, nil
}

func (s *memStore) Update(ctx context.Context, r *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[r.ID]; !ok {
		return domain.ErrNotFound
	}
	s.reservations[r.ID] = *r
	return nil
}

func (s *memStore) FindByExternalID(ctx context.Context, source, externalID string) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.sortedReservations() {
		if r.Source != nil && r.ExternalID != nil && *r.Source == source && *r.ExternalID == externalID {
			return r, nil
		}
	}
	return domain.Reservation{}, domain.ErrNotFound
}

func (s *memStore) FindByGuestStay(ctx context.Context, email string, checkIn, checkOut time.Time) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.sortedReservations() {
		if r.GuestEmail == email && r.CheckIn.Equal(checkIn) && r.CheckOut.Equal(checkOut) {
			return r, nil
		}
	}
	return domain.Reservation{}, domain.ErrNotFound
}

func (s *memStore) CountOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.reservations {
		if r.RoomID == nil || *r.RoomID != roomID {
			continue
		}
		if r.Status != domain.StatusConfirmed && r.Status != domain.StatusCheckedIn {
			continue
		}
		if domain.Overlaps(r.CheckIn, r.CheckOut, checkIn, checkOut) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) sortedReservations() []domain.Reservation {
	out := make([]domain.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ---- RoomStore ----

func (s *memStore) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return rm, nil
}

func (s *memStore) ListByType(ctx context.Context, roomType string) ([]domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Room
	for _, rm := range s.rooms {
		if strings.EqualFold(rm.Type, roomType) {
			out = append(out, rm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *memStore) ListByStatus(ctx context.Context, status domain.RoomStatus) ([]domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Room
	for _, rm := range s.rooms {
		if rm.Status == status {
			out = append(out, rm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *memStore) UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[id]
	if !ok {
		return domain.ErrNotFound
	}
	rm.Status = status
	s.rooms[id] = rm
	return nil
}

func (s *memStore) SetCurrentStay(ctx context.Context, id int64, checkIn, checkOut time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[id]
	if !ok {
		return domain.ErrNotFound
	}
	rm.CurrentCheckIn = &checkIn
	rm.CurrentCheckOut = &checkOut
	s.rooms[id] = rm
	return nil
}

// ---- TaskStore ----

func (s *memStore) CreateTask(ctx context.Context, t domain.HousekeepingTask) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	t.CreatedAt = time.Now().UTC()
	s.tasks = append(s.tasks, t)
	return t.ID, nil
}

func (s *memStore) tasksOfType(tt domain.TaskType) []domain.HousekeepingTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.HousekeepingTask
	for _, t := range s.tasks {
		if t.Type == tt {
			out = append(out, t)
		}
	}
	return out
}

// ---- SourceStore ----

func (s *memStore) UpsertSource(ctx context.Context, cfg domain.SourceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[cfg.Name] = cfg
	return nil
}

func (s *memStore) GetSource(ctx context.Context, name string) (domain.SourceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.sources[name]
	if !ok {
		return domain.SourceConfig{}, domain.ErrNotFound
	}
	return cfg, nil
}

func (s *memStore) ListSources(ctx context.Context) ([]domain.SourceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.SourceConfig
	for _, cfg := range s.sources {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- SyncLogStore ----

func (s *memStore) AppendSyncLog(ctx context.Context, e domain.SyncLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	e.CreatedAt = time.Now().UTC()
	s.logs = append(s.logs, e)
	return nil
}

func (s *memStore) RecentFailures(ctx context.Context, limit int) ([]domain.SyncLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.SyncLogEntry
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if !s.logs[i].Success {
			out = append(out, s.logs[i])
		}
	}
	return out, nil
}

// ---- Cache ----

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return false, nil
	}
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// ---- SourceAdapter ----

type fakeAdapter struct {
	bookings []domain.CanonicalBooking
	fetchErr error
	probeLat time.Duration
	probeErr error
}

func (a *fakeAdapter) Fetch(ctx context.Context, cfg domain.SourceConfig) ([]domain.CanonicalBooking, error) {
	if a.fetchErr != nil {
		return nil, a.fetchErr
	}
	return a.bookings, nil
}

func (a *fakeAdapter) Probe(ctx context.Context, cfg domain.SourceConfig) (time.Duration, error) {
	return a.probeLat, a.probeErr
}
