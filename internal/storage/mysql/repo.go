package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"roomsync/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- sources ----

func (r *Repo) UpsertSource(ctx context.Context, cfg domain.SourceConfig) error {
	facets, _ := json.Marshal(cfg.SyncFacets)
	_, err := r.db.ExecContext(ctx, upsertSourceSQL,
		cfg.Name,
		string(cfg.Kind),
		cfg.Endpoint,
		cfg.APIKey,
		cfg.APISecret,
		cfg.ProtocolVersion,
		cfg.Active,
		int(cfg.SyncInterval.Seconds()),
		string(facets),
	)
	return err
}

func (r *Repo) GetSource(ctx context.Context, name string) (domain.SourceConfig, error) {
	return scanSource(r.db.QueryRowContext(ctx, getSourceSQL, name))
}

func (r *Repo) ListSources(ctx context.Context) ([]domain.SourceConfig, error) {
	rows, err := r.db.QueryContext(ctx, listSourcesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SourceConfig
	for rows.Next() {
		cfg, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSource(row rowScanner) (domain.SourceConfig, error) {
	var cfg domain.SourceConfig
	var kind string
	var intervalSecs int
	var facetsRaw sql.NullString
	if err := row.Scan(&cfg.Name, &kind, &cfg.Endpoint, &cfg.APIKey, &cfg.APISecret,
		&cfg.ProtocolVersion, &cfg.Active, &intervalSecs, &facetsRaw); err != nil {
		if err == sql.ErrNoRows {
			return domain.SourceConfig{}, domain.ErrNotFound
		}
		return domain.SourceConfig{}, err
	}
	cfg.Kind = domain.SourceKind(kind)
	cfg.SyncInterval = time.Duration(intervalSecs) * time.Second
	if facetsRaw.Valid && facetsRaw.String != "" {
		_ = json.Unmarshal([]byte(facetsRaw.String), &cfg.SyncFacets)
	}
	return cfg, nil
}

// ---- reservations ----

func (r *Repo) Create(ctx context.Context, res *domain.Reservation) (int64, error) {
	out, err := r.db.ExecContext(ctx, insertReservationSQL,
		valStr(res.ExternalID),
		valStr(res.Source),
		valInt64(res.RoomID),
		res.GuestName,
		res.GuestEmail,
		res.GuestPhone,
		res.RoomType,
		res.CheckIn,
		res.CheckOut,
		res.Guests,
		res.TotalAmount,
		res.Currency,
		string(res.Status),
		nilIfZero(res.BookedAt),
		res.SpecialRequests,
		valJSON(res.MetadataJSON),
		res.IsExternal,
		valTime(res.LastSyncAt),
	)
	if err != nil {
		if isDuplicate(err) {
			return 0, domain.ErrDuplicateKey
		}
		return 0, err
	}
	return out.LastInsertId()
}

func (r *Repo) Update(ctx context.Context, res *domain.Reservation) error {
	_, err := r.db.ExecContext(ctx, updateReservationSQL,
		valStr(res.ExternalID),
		valStr(res.Source),
		res.GuestName,
		res.GuestEmail,
		res.GuestPhone,
		res.RoomType,
		res.CheckIn,
		res.CheckOut,
		res.Guests,
		res.TotalAmount,
		res.Currency,
		string(res.Status),
		nilIfZero(res.BookedAt),
		res.SpecialRequests,
		valJSON(res.MetadataJSON),
		valTime(res.LastSyncAt),
		res.ID,
	)
	return err
}

func (r *Repo) FindByExternalID(ctx context.Context, source, externalID string) (domain.Reservation, error) {
	return scanReservation(r.db.QueryRowContext(ctx, findByExternalIDSQL, source, externalID))
}

func (r *Repo) FindByGuestStay(ctx context.Context, email string, checkIn, checkOut time.Time) (domain.Reservation, error) {
	return scanReservation(r.db.QueryRowContext(ctx, findByGuestStaySQL, email, checkIn, checkOut))
}

func (r *Repo) CountOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countOverlappingSQL, roomID, checkOut, checkIn).Scan(&n)
	return n, err
}

func scanReservation(row rowScanner) (domain.Reservation, error) {
	var res domain.Reservation
	var (
		externalID, source             sql.NullString
		roomID                         sql.NullInt64
		bookedAt, lastSyncAt           sql.NullTime
		specialRequests                sql.NullString
		metadataRaw                    sql.NullString
		status                         string
	)
	if err := row.Scan(
		&res.ID,
		&externalID,
		&source,
		&roomID,
		&res.GuestName,
		&res.GuestEmail,
		&res.GuestPhone,
		&res.RoomType,
		&res.CheckIn,
		&res.CheckOut,
		&res.Guests,
		&res.TotalAmount,
		&res.Currency,
		&status,
		&bookedAt,
		&specialRequests,
		&metadataRaw,
		&res.IsExternal,
		&lastSyncAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}
	res.Status = domain.BookingStatus(status)
	if externalID.Valid {
		s := externalID.String
		res.ExternalID = &s
	}
	if source.Valid {
		s := source.String
		res.Source = &s
	}
	if roomID.Valid {
		id := roomID.Int64
		res.RoomID = &id
	}
	if bookedAt.Valid {
		res.BookedAt = bookedAt.Time
	}
	if specialRequests.Valid {
		res.SpecialRequests = specialRequests.String
	}
	if metadataRaw.Valid {
		res.MetadataJSON = []byte(metadataRaw.String)
	}
	if lastSyncAt.Valid {
		t := lastSyncAt.Time
		res.LastSyncAt = &t
	}
	return res, nil
}

// ---- rooms ----

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	return scanRoom(r.db.QueryRowContext(ctx, getRoomSQL, id))
}

func (r *Repo) ListByType(ctx context.Context, roomType string) ([]domain.Room, error) {
	return r.listRooms(ctx, listRoomsByTypeSQL, roomType)
}

func (r *Repo) ListByStatus(ctx context.Context, status domain.RoomStatus) ([]domain.Room, error) {
	return r.listRooms(ctx, listRoomsByStatusSQL, string(status))
}

func (r *Repo) listRooms(ctx context.Context, query string, arg any) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func scanRoom(row rowScanner) (domain.Room, error) {
	var rm domain.Room
	var status string
	var in, out sql.NullTime
	if err := row.Scan(&rm.ID, &rm.Number, &rm.Type, &status, &in, &out); err != nil {
		if err == sql.ErrNoRows {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, err
	}
	rm.Status = domain.RoomStatus(status)
	if in.Valid {
		t := in.Time
		rm.CurrentCheckIn = &t
	}
	if out.Valid {
		t := out.Time
		rm.CurrentCheckOut = &t
	}
	return rm, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) error {
	_, err := r.db.ExecContext(ctx, updateRoomStatusSQL, string(status), id)
	return err
}

func (r *Repo) SetCurrentStay(ctx context.Context, id int64, checkIn, checkOut time.Time) error {
	_, err := r.db.ExecContext(ctx, setCurrentStaySQL, checkIn, checkOut, id)
	return err
}

// ---- housekeeping tasks ----

func (r *Repo) CreateTask(ctx context.Context, t domain.HousekeepingTask) (int64, error) {
	out, err := r.db.ExecContext(ctx, insertTaskSQL,
		t.RoomID, string(t.Type), t.ScheduledAt, t.Instructions, t.Source)
	if err != nil {
		return 0, err
	}
	return out.LastInsertId()
}

// ---- sync logs ----

func (r *Repo) AppendSyncLog(ctx context.Context, e domain.SyncLogEntry) error {
	_, err := r.db.ExecContext(ctx, insertSyncLogSQL,
		e.Source, e.Operation, e.RunID, valJSON(e.DetailJSON), e.Success)
	return err
}

func (r *Repo) RecentFailures(ctx context.Context, limit int) ([]domain.SyncLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, recentFailuresSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SyncLogEntry
	for rows.Next() {
		var e domain.SyncLogEntry
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.Source, &e.Operation, &e.RunID, &detail, &e.Success, &e.CreatedAt); err != nil {
			return nil, err
		}
		if detail.Valid {
			e.DetailJSON = []byte(detail.String)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nilIfZero(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
