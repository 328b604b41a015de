/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements every roster persistence contract (TemplateStore, RosterStore,
  AbsenceStore, PersonDirectory) on a single SQLite file, the way the food
  bank has always kept its data.

KEY TABLES:
  persons:            volunteers
  absences:           absence ledger (inclusive date ranges)
  templates:          weekly pattern per planning kind
  roster_instances:   one row per generated (kind, ISO week)
  roster_rows:        seats of a generated week
  regeneration_locks: in-flight destructive regenerations

ENCODING:
  Dates are stored as YYYY-MM-DD text. roster_rows.absent keeps the
  historical 'oui'/'non' strings; they never leave this package.

CONCURRENCY:
  Uses sync.RWMutex for in-process safety. Regeneration of a week is
  additionally guarded by a row in regeneration_locks, so two processes
  sharing the file cannot both rebuild the same week.

USAGE:
  store, err := sqlite.New("./data/planning.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/warp/roster-engine/config"
	"github.com/warp/roster-engine/generic"
	"go.uber.org/zap"
)

// lockTimeFormat has a fixed width so lock timestamps compare as text.
const lockTimeFormat = "2006-01-02T15:04:05.000000Z"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	lockTTL time.Duration
	logger  *zap.Logger
}

var _ generic.Stores = (*Store)(nil)

// New creates a new SQLite store with the given database path and default settings.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	return Open(config.StorageConfig{Path: dbPath})
}

// Open creates a store from an explicit storage configuration.
func Open(cfg config.StorageConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("storage path is required")
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", cfg.Path, busy.Milliseconds())
	if cfg.Path != ":memory:" {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Path == ":memory:" {
		// every connection to :memory: is a distinct database
		db.SetMaxOpenConns(1)
	}

	ttl := cfg.RegenerationLockTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	store := &Store{db: db, lockTTL: ttl, logger: zap.NewNop()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// SetLogger sets the logger used for failures that have no caller to
// return to. A nil logger disables them.
func (s *Store) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger.Named("sqlite")
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS absences (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL,
		CHECK (end_date >= start_date)
	);

	CREATE INDEX IF NOT EXISTS idx_absences_person
		ON absences(person_id);
	CREATE INDEX IF NOT EXISTS idx_absences_range
		ON absences(start_date, end_date);

	CREATE TABLE IF NOT EXISTS templates (
		kind TEXT NOT NULL,
		day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 5),
		slot TEXT NOT NULL,
		nominee_id TEXT,
		position INTEGER NOT NULL,
		PRIMARY KEY (kind, day, slot)
	);

	CREATE TABLE IF NOT EXISTS roster_instances (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		iso_year INTEGER NOT NULL,
		iso_week INTEGER NOT NULL,
		generated_at TEXT NOT NULL,
		UNIQUE (kind, iso_year, iso_week)
	);

	CREATE TABLE IF NOT EXISTS roster_rows (
		instance_id TEXT NOT NULL REFERENCES roster_instances(id) ON DELETE CASCADE,
		day INTEGER NOT NULL,
		slot TEXT NOT NULL,
		position INTEGER NOT NULL,
		assignee_id TEXT,
		absent TEXT NOT NULL DEFAULT 'non' CHECK (absent IN ('oui', 'non')),
		substitute_id TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (instance_id, day, slot)
	);

	CREATE TABLE IF NOT EXISTS regeneration_locks (
		kind TEXT NOT NULL,
		iso_year INTEGER NOT NULL,
		iso_week INTEGER NOT NULL,
		owner TEXT NOT NULL,
		acquired_at TEXT NOT NULL,
		PRIMARY KEY (kind, iso_year, iso_week)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TEMPLATE STORE
// =============================================================================

func (s *Store) LoadTemplate(ctx context.Context, kind generic.Kind) (generic.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT day, slot, nominee_id FROM templates WHERE kind = ? ORDER BY position",
		kind,
	)
	if err != nil {
		return generic.Template{}, fmt.Errorf("failed to load template: %w", err)
	}
	defer rows.Close()

	tpl := generic.Template{Kind: kind}
	for rows.Next() {
		var (
			slot    generic.TemplateSlot
			nominee sql.NullString
		)
		if err := rows.Scan(&slot.Day, &slot.Slot, &nominee); err != nil {
			return generic.Template{}, fmt.Errorf("failed to scan template slot: %w", err)
		}
		slot.Nominee = generic.PersonID(nominee.String)
		tpl.Slots = append(tpl.Slots, slot)
	}
	return tpl, rows.Err()
}

func (s *Store) SaveTemplate(ctx context.Context, tpl generic.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM templates WHERE kind = ?", tpl.Kind); err != nil {
			return fmt.Errorf("failed to clear template: %w", err)
		}
		for i, slot := range tpl.Slots {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO templates (kind, day, slot, nominee_id, position) VALUES (?, ?, ?, ?, ?)",
				tpl.Kind, int(slot.Day), slot.Slot, nullString(string(slot.Nominee)), i,
			)
			if err != nil {
				if isConstraintError(err) {
					return &generic.MalformedRosterError{
						Kind: tpl.Kind, Day: slot.Day, Slot: slot.Slot,
						Reason: "invalid or duplicate template slot",
					}
				}
				return fmt.Errorf("failed to save template slot: %w", err)
			}
		}
		return nil
	})
}

// =============================================================================
// ROSTER STORE
// =============================================================================

func (s *Store) LoadInstance(ctx context.Context, kind generic.Kind, week generic.Week) (*generic.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst := &generic.Instance{Kind: kind, Week: week}
	var generatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, generated_at FROM roster_instances WHERE kind = ? AND iso_year = ? AND iso_week = ?",
		kind, week.Year, week.Number,
	).Scan(&inst.ID, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrInstanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load roster instance: %w", err)
	}
	inst.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: invalid generated_at: %w", generic.ErrMalformedRoster, kind, week, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT day, slot, assignee_id, absent, substitute_id
		FROM roster_rows
		WHERE instance_id = ?
		ORDER BY position`,
		inst.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r          generic.Row
			assignee   sql.NullString
			substitute sql.NullString
			absent     string
		)
		if err := rows.Scan(&r.Day, &r.Slot, &assignee, &absent, &substitute); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		flag, err := decodeFlag(absent)
		if err != nil {
			return nil, &generic.MalformedRosterError{Kind: kind, Week: week, Day: r.Day, Slot: r.Slot, Reason: err.Error()}
		}
		r.Assignee = generic.PersonID(assignee.String)
		r.Substitute = generic.PersonID(substitute.String)
		r.Absent = flag
		inst.Rows = append(inst.Rows, r)
	}
	return inst, rows.Err()
}

// SaveInstance replaces the whole week in one transaction. A missing ID gets a fresh one.
func (s *Store) SaveInstance(ctx context.Context, inst *generic.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	if inst.GeneratedAt.IsZero() {
		inst.GeneratedAt = time.Now().UTC()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM roster_rows WHERE instance_id IN (
				SELECT id FROM roster_instances WHERE kind = ? AND iso_year = ? AND iso_week = ?
			) OR instance_id = ?`,
			inst.Kind, inst.Week.Year, inst.Week.Number, inst.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to clear roster rows: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"DELETE FROM roster_instances WHERE (kind = ? AND iso_year = ? AND iso_week = ?) OR id = ?",
			inst.Kind, inst.Week.Year, inst.Week.Number, inst.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to clear roster instance: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO roster_instances (id, kind, iso_year, iso_week, generated_at) VALUES (?, ?, ?, ?, ?)",
			inst.ID, inst.Kind, inst.Week.Year, inst.Week.Number, inst.GeneratedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to save roster instance: %w", err)
		}

		for i, r := range inst.Rows {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO roster_rows
				(instance_id, day, slot, position, assignee_id, absent, substitute_id, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				inst.ID, int(r.Day), r.Slot, i,
				nullString(string(r.Assignee)), encodeFlag(r.Absent), nullString(string(r.Substitute)), now,
			)
			if err != nil {
				if isConstraintError(err) {
					return &generic.MalformedRosterError{
						Kind: inst.Kind, Week: inst.Week, Day: r.Day, Slot: r.Slot,
						Reason: "duplicate seat in roster",
					}
				}
				return fmt.Errorf("failed to save roster row: %w", err)
			}
		}
		return nil
	})
}

// SaveRow updates one seat in a single statement.
func (s *Store) SaveRow(ctx context.Context, instanceID string, row generic.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE roster_rows
		SET assignee_id = ?, absent = ?, substitute_id = ?, updated_at = ?
		WHERE instance_id = ? AND day = ? AND slot = ?`,
		nullString(string(row.Assignee)), encodeFlag(row.Absent), nullString(string(row.Substitute)),
		time.Now().UTC().Format(time.RFC3339),
		instanceID, int(row.Day), row.Slot,
	)
	if err != nil {
		return fmt.Errorf("failed to save roster row: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return missingRow(ctx, s.db, instanceID, row.Day, row.Slot)
	}
	return nil
}

// MarkAbsences writes the batch in one transaction. Rows with a substitute
// are left alone; any failure rolls back every flag of the batch.
func (s *Store) MarkAbsences(ctx context.Context, instanceID string, rows []generic.Row) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	written := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().Format(time.RFC3339)
		for _, r := range rows {
			res, err := tx.ExecContext(ctx, `
				UPDATE roster_rows
				SET absent = ?, updated_at = ?
				WHERE instance_id = ? AND day = ? AND slot = ? AND substitute_id IS NULL`,
				encodeFlag(r.Absent), now,
				instanceID, int(r.Day), r.Slot,
			)
			if err != nil {
				return fmt.Errorf("failed to mark absence %s/%s: %w", r.Day, r.Slot, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				written++
				continue
			}

			var count int
			err = tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM roster_rows WHERE instance_id = ? AND day = ? AND slot = ?",
				instanceID, int(r.Day), r.Slot,
			).Scan(&count)
			if err != nil {
				return err
			}
			if count == 0 {
				return missingRow(ctx, tx, instanceID, r.Day, r.Slot)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func missingRow(ctx context.Context, q rowQuerier, instanceID string, day generic.Day, slot generic.SlotKey) error {
	var (
		kind       generic.Kind
		year, week int
	)
	err := q.QueryRowContext(ctx,
		"SELECT kind, iso_year, iso_week FROM roster_instances WHERE id = ?", instanceID,
	).Scan(&kind, &year, &week)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id %s", generic.ErrInstanceNotFound, instanceID)
	}
	if err != nil {
		return err
	}
	return &generic.SlotNotFoundError{Kind: kind, Week: generic.Week{Year: year, Number: week}, Day: day, Slot: slot}
}

// LockRegeneration inserts a lock row for (kind, week). A lock older than the
// configured TTL is considered abandoned and taken over.
func (s *Store) LockRegeneration(ctx context.Context, kind generic.Kind, week generic.Week) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO regeneration_locks (kind, iso_year, iso_week, owner, acquired_at) VALUES (?, ?, ?, ?, ?)",
		kind, week.Year, week.Number, owner, now.Format(lockTimeFormat),
	)
	if err != nil {
		if !isConstraintError(err) {
			return nil, fmt.Errorf("failed to lock regeneration: %w", err)
		}
		res, err := s.db.ExecContext(ctx, `
			UPDATE regeneration_locks SET owner = ?, acquired_at = ?
			WHERE kind = ? AND iso_year = ? AND iso_week = ? AND acquired_at < ?`,
			owner, now.Format(lockTimeFormat),
			kind, week.Year, week.Number, now.Add(-s.lockTTL).Format(lockTimeFormat),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to take over stale regeneration lock: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, &generic.ConcurrentRegenerationError{Kind: kind, Week: week}
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			_, err := s.db.ExecContext(context.Background(),
				"DELETE FROM regeneration_locks WHERE kind = ? AND iso_year = ? AND iso_week = ? AND owner = ?",
				kind, week.Year, week.Number, owner,
			)
			if err != nil {
				// the lock stays until the TTL expires
				s.logger.Error("failed to release regeneration lock",
					zap.String("kind", string(kind)),
					zap.Stringer("week", week),
					zap.Duration("ttl", s.lockTTL),
					zap.Error(err))
			}
		})
	}, nil
}

func (s *Store) ListInstances(ctx context.Context, kind generic.Kind) ([]generic.Week, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT iso_year, iso_week FROM roster_instances WHERE kind = ? ORDER BY iso_year DESC, iso_week DESC",
		kind,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster instances: %w", err)
	}
	defer rows.Close()

	var weeks []generic.Week
	for rows.Next() {
		var w generic.Week
		if err := rows.Scan(&w.Year, &w.Number); err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

// =============================================================================
// ABSENCE STORE
// =============================================================================

func (s *Store) LoadActiveRanges(ctx context.Context, window generic.Period) (generic.AbsenceLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAbsences(ctx, `
		SELECT id, person_id, start_date, end_date, reason FROM absences
		WHERE start_date <= ? AND end_date >= ?
		ORDER BY start_date, id`,
		window.End.String(), window.Start.String(),
	)
}

func (s *Store) SaveAbsence(ctx context.Context, a generic.AbsenceRange) error {
	if err := a.Period.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO absences (id, person_id, start_date, end_date, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			person_id = excluded.person_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			reason = excluded.reason`,
		a.ID, a.PersonID, a.Period.Start.String(), a.Period.End.String(), nullString(a.Reason),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save absence: %w", err)
	}
	return nil
}

func (s *Store) DeleteAbsence(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM absences WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete absence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrAbsenceNotFound
	}
	return nil
}

func (s *Store) ListAbsences(ctx context.Context, person generic.PersonID) ([]generic.AbsenceRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if person.IsZero() {
		return s.queryAbsences(ctx,
			"SELECT id, person_id, start_date, end_date, reason FROM absences ORDER BY start_date, id")
	}
	return s.queryAbsences(ctx,
		"SELECT id, person_id, start_date, end_date, reason FROM absences WHERE person_id = ? ORDER BY start_date, id",
		person)
}

func (s *Store) queryAbsences(ctx context.Context, query string, args ...any) (generic.AbsenceLedger, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query absences: %w", err)
	}
	defer rows.Close()

	var out generic.AbsenceLedger
	for rows.Next() {
		var (
			a          generic.AbsenceRange
			start, end string
			reason     sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.PersonID, &start, &end, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan absence: %w", err)
		}
		if a.Period.Start, err = generic.ParseDate(start); err != nil {
			return nil, err
		}
		if a.Period.End, err = generic.ParseDate(end); err != nil {
			return nil, err
		}
		a.Reason = reason.String
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// PERSON DIRECTORY
// =============================================================================

func (s *Store) DisplayName(ctx context.Context, id generic.PersonID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name string
	err := s.db.QueryRowContext(ctx, "SELECT name FROM persons WHERE id = ?", id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", generic.ErrPersonNotFound
	}
	return name, err
}

func (s *Store) SavePerson(ctx context.Context, p generic.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (id, name, email, phone, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone`,
		p.ID, p.Name, nullString(p.Email), nullString(p.Phone),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save person: %w", err)
	}
	return nil
}

func (s *Store) ListPersons(ctx context.Context) ([]generic.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, phone FROM persons ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var out []generic.Person
	for rows.Next() {
		var (
			p            generic.Person
			email, phone sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &email, &phone); err != nil {
			return nil, err
		}
		p.Email, p.Phone = email.String, phone.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot writes a consistent copy of the database to path. The file must not exist.
func (s *Store) Snapshot(ctx context.Context, path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}

// Helper functions

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func encodeFlag(b bool) string {
	if b {
		return "oui"
	}
	return "non"
}

func decodeFlag(s string) (bool, error) {
	switch s {
	case "oui":
		return true, nil
	case "non":
		return false, nil
	default:
		return false, fmt.Errorf("invalid absence flag %q", s)
	}
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
