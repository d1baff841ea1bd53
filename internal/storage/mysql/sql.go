package mysql

const upsertSourceSQL = `
INSERT INTO source_configs
  (name, kind, endpoint, api_key, api_secret, protocol_version, active, sync_interval_secs, sync_facets)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  kind               = VALUES(kind),
  endpoint           = VALUES(endpoint),
  api_key            = VALUES(api_key),
  api_secret         = VALUES(api_secret),
  protocol_version   = VALUES(protocol_version),
  active             = VALUES(active),
  sync_interval_secs = VALUES(sync_interval_secs),
  sync_facets        = VALUES(sync_facets),
  updated_at         = CURRENT_TIMESTAMP
`

const getSourceSQL = `
SELECT name, kind, endpoint, api_key, api_secret, protocol_version, active, sync_interval_secs, sync_facets
FROM source_configs
WHERE name = ?
`

const listSourcesSQL = `
SELECT name, kind, endpoint, api_key, api_secret, protocol_version, active, sync_interval_secs, sync_facets
FROM source_configs
ORDER BY name
`

const insertReservationSQL = `
INSERT INTO reservations
  (external_id, source, room_id, guest_name, guest_email, guest_phone, room_type,
   check_in, check_out, guests, total_amount, currency, status, booked_at,
   special_requests, metadata, is_external, last_sync_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateReservationSQL = `
UPDATE reservations SET
  external_id      = ?,
  source           = ?,
  guest_name       = ?,
  guest_email      = ?,
  guest_phone      = ?,
  room_type        = ?,
  check_in         = ?,
  check_out        = ?,
  guests           = ?,
  total_amount     = ?,
  currency         = ?,
  status           = ?,
  booked_at        = ?,
  special_requests = ?,
  metadata         = ?,
  last_sync_at     = ?,
  updated_at       = CURRENT_TIMESTAMP
WHERE id = ?
`

const reservationColumns = `
  id, external_id, source, room_id, guest_name, guest_email, guest_phone, room_type,
  check_in, check_out, guests, total_amount, currency, status, booked_at,
  special_requests, metadata, is_external, last_sync_at, created_at, updated_at
`

const findByExternalIDSQL = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE source = ? AND external_id = ?
`

// Fallback match for re-imports under a changed external id. Oldest row wins
// so repeated imports keep converging on the same reservation.
const findByGuestStaySQL = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE guest_email = ? AND check_in = ? AND check_out = ?
ORDER BY id
LIMIT 1
`

// Half-open overlap: [a1,a2) and [b1,b2) intersect iff a1 < b2 AND b1 < a2.
const countOverlappingSQL = `
SELECT COUNT(*)
FROM reservations
WHERE room_id = ?
  AND status IN ('confirmed', 'checked_in')
  AND check_in < ?
  AND ? < check_out
`

const getRoomSQL = `
SELECT id, number, type, status, current_check_in, current_check_out
FROM rooms
WHERE id = ?
`

const listRoomsByTypeSQL = `
SELECT id, number, type, status, current_check_in, current_check_out
FROM rooms
WHERE LOWER(type) = LOWER(?)
ORDER BY number
`

const listRoomsByStatusSQL = `
SELECT id, number, type, status, current_check_in, current_check_out
FROM rooms
WHERE status = ?
ORDER BY number
`

const updateRoomStatusSQL = `
UPDATE rooms SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

const setCurrentStaySQL = `
UPDATE rooms SET current_check_in = ?, current_check_out = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

const insertTaskSQL = `
INSERT INTO housekeeping_tasks (room_id, type, scheduled_at, instructions, source)
VALUES (?, ?, ?, ?, ?)
`

const insertSyncLogSQL = `
INSERT INTO sync_logs (source, operation, run_id, detail, success)
VALUES (?, ?, ?, ?, ?)
`

const recentFailuresSQL = `
SELECT id, source, operation, run_id, detail, success, created_at
FROM sync_logs
WHERE success = 0
ORDER BY created_at DESC, id DESC
LIMIT ?
`
