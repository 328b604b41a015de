package sqlite_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roster-engine/config"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/store/sqlite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "planning.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func date(t *testing.T, s string) generic.TimePoint {
	t.Helper()
	d, err := generic.ParseDate(s)
	require.NoError(t, err)
	return d
}

var w10 = generic.Week{Year: 2025, Number: 10}

func sampleInstance() *generic.Instance {
	return &generic.Instance{
		Kind: "ramasse",
		Week: w10,
		Rows: []generic.Row{
			{Day: generic.Monday, Slot: "chauffeur", Assignee: "p1"},
			{Day: generic.Monday, Slot: "equipier1", Assignee: "p2", Absent: true, Substitute: "p3"},
			{Day: generic.Tuesday, Slot: "chauffeur"},
		},
	}
}

func TestSQLite_InstanceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	inst := sampleInstance()
	require.NoError(t, s.SaveInstance(ctx, inst))
	require.NotEmpty(t, inst.ID)

	got, err := s.LoadInstance(ctx, "ramasse", w10)
	require.NoError(t, err)
	assert.Equal(t, inst.ID, got.ID)
	assert.Equal(t, inst.Rows, got.Rows, "row order and empty seats are preserved")
	assert.False(t, got.GeneratedAt.IsZero())

	_, err = s.LoadInstance(ctx, "ramasse", w10.Next())
	assert.ErrorIs(t, err, generic.ErrInstanceNotFound)
}

func TestSQLite_SaveInstanceReplacesWeek(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first := sampleInstance()
	require.NoError(t, s.SaveInstance(ctx, first))

	// GIVEN: a regeneration with a new identity for the same week
	second := &generic.Instance{Kind: "ramasse", Week: w10, Rows: []generic.Row{
		{Day: generic.Friday, Slot: "chauffeur", Assignee: "p4"},
	}}
	require.NoError(t, s.SaveInstance(ctx, second))

	// THEN: only the new rows remain
	got, err := s.LoadInstance(ctx, "ramasse", w10)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Len(t, got.Rows, 1)

	weeks, err := s.ListInstances(ctx, "ramasse")
	require.NoError(t, err)
	assert.Equal(t, []generic.Week{w10}, weeks)
}

func TestSQLite_MarkAbsencesSkipsSubstitutedRows(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	inst := sampleInstance()
	require.NoError(t, s.SaveInstance(ctx, inst))

	written, err := s.MarkAbsences(ctx, inst.ID, []generic.Row{
		{Day: generic.Monday, Slot: "chauffeur", Absent: true},
		{Day: generic.Monday, Slot: "equipier1", Absent: false},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, written, "a row with a substitute is never rewritten")

	got, err := s.LoadInstance(ctx, "ramasse", w10)
	require.NoError(t, err)
	assert.True(t, got.Rows[0].Absent)
	assert.True(t, got.Rows[1].Absent)

	_, err = s.MarkAbsences(ctx, inst.ID, []generic.Row{{Day: generic.Wednesday, Slot: "chauffeur", Absent: true}})
	var notFound *generic.SlotNotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = s.MarkAbsences(ctx, "missing", []generic.Row{{Day: generic.Monday, Slot: "chauffeur", Absent: true}})
	assert.ErrorIs(t, err, generic.ErrInstanceNotFound)
}

func TestSQLite_MarkAbsencesRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "planning.db")
	s, err := sqlite.New(path)
	require.NoError(t, err)
	defer s.Close()

	inst := sampleInstance()
	require.NoError(t, s.SaveInstance(ctx, inst))

	// GIVEN: every write to a Tuesday row fails
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`
		CREATE TRIGGER fail_tuesday BEFORE UPDATE OF absent ON roster_rows
		WHEN NEW.day = 2
		BEGIN SELECT RAISE(ABORT, 'disk I/O error'); END`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	// WHEN: the second row of the batch fails
	_, err = s.MarkAbsences(ctx, inst.ID, []generic.Row{
		{Day: generic.Monday, Slot: "chauffeur", Absent: true},
		{Day: generic.Tuesday, Slot: "chauffeur", Absent: true},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")

	// THEN: the Monday flag was rolled back with it
	got, err := s.LoadInstance(ctx, "ramasse", w10)
	require.NoError(t, err)
	assert.False(t, got.Rows[0].Absent)
	assert.False(t, got.Rows[2].Absent)

	// an unknown seat in the middle of a batch rolls back too
	_, err = s.MarkAbsences(ctx, inst.ID, []generic.Row{
		{Day: generic.Monday, Slot: "chauffeur", Absent: true},
		{Day: generic.Friday, Slot: "chauffeur", Absent: true},
	})
	assert.ErrorIs(t, err, generic.ErrSlotNotFound)
	got, err = s.LoadInstance(ctx, "ramasse", w10)
	require.NoError(t, err)
	assert.False(t, got.Rows[0].Absent)
}

func TestSQLite_LoadInstanceRejectsCorruptTimestamp(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "planning.db")
	s, err := sqlite.New(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.SaveInstance(ctx, sampleInstance()))

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec("UPDATE roster_instances SET generated_at = 'mardi dernier'")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	_, err = s.LoadInstance(ctx, "ramasse", w10)
	assert.ErrorIs(t, err, generic.ErrMalformedRoster)
	assert.Contains(t, err.Error(), "generated_at")
}

func TestSQLite_SaveRow(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	inst := sampleInstance()
	require.NoError(t, s.SaveInstance(ctx, inst))

	row := generic.Row{Day: generic.Monday, Slot: "chauffeur", Assignee: "p1", Absent: true, Substitute: "p4"}
	require.NoError(t, s.SaveRow(ctx, inst.ID, row))

	got, err := s.LoadInstance(ctx, "ramasse", w10)
	require.NoError(t, err)
	assert.Equal(t, row, got.Rows[0])

	err = s.SaveRow(ctx, inst.ID, generic.Row{Day: generic.Thursday, Slot: "chauffeur"})
	assert.ErrorIs(t, err, generic.ErrSlotNotFound)
}

func TestSQLite_LockRegeneration(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	release, err := s.LockRegeneration(ctx, "ramasse", w10)
	require.NoError(t, err)

	_, err = s.LockRegeneration(ctx, "ramasse", w10)
	assert.ErrorIs(t, err, generic.ErrConcurrentRegeneration)

	other, err := s.LockRegeneration(ctx, "pesee", w10)
	require.NoError(t, err, "locks are per kind and week")
	other()

	release()
	release()

	again, err := s.LockRegeneration(ctx, "ramasse", w10)
	require.NoError(t, err)
	again()
}

func TestSQLite_FailedLockReleaseIsLogged(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	core, logs := observer.New(zap.ErrorLevel)
	s.SetLogger(zap.New(core))

	release, err := s.LockRegeneration(ctx, "ramasse", w10)
	require.NoError(t, err)

	// WHEN: the database is gone before the lock is released
	require.NoError(t, s.Close())
	release()

	entries := logs.FilterMessage("failed to release regeneration lock").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ramasse", entries[0].ContextMap()["kind"])
	assert.Equal(t, "2025-W10", entries[0].ContextMap()["week"])
}

func TestSQLite_StaleLockIsTakenOver(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.Open(config.StorageConfig{
		Path:                filepath.Join(t.TempDir(), "planning.db"),
		RegenerationLockTTL: time.Millisecond,
	})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.LockRegeneration(ctx, "ramasse", w10)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	release, err := s.LockRegeneration(ctx, "ramasse", w10)
	require.NoError(t, err)
	release()
}

func TestSQLite_Absences(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveAbsence(ctx, generic.AbsenceRange{
		PersonID: "p1",
		Period:   generic.Period{Start: date(t, "2025-03-03"), End: date(t, "2025-03-05")},
		Reason:   "congés",
	}))
	require.NoError(t, s.SaveAbsence(ctx, generic.AbsenceRange{
		PersonID: "p2",
		Period:   generic.Period{Start: date(t, "2025-04-01"), End: date(t, "2025-04-02")},
	}))

	err := s.SaveAbsence(ctx, generic.AbsenceRange{
		PersonID: "p2",
		Period:   generic.Period{Start: date(t, "2025-04-02"), End: date(t, "2025-04-01")},
	})
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)

	period, err := w10.Period()
	require.NoError(t, err)
	active, err := s.LoadActiveRanges(ctx, period)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, generic.PersonID("p1"), active[0].PersonID)
	assert.Equal(t, "congés", active[0].Reason)
	assert.True(t, active.Covers("p1", date(t, "2025-03-05")))

	all, err := s.ListAbsences(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeleteAbsence(ctx, active[0].ID))
	assert.ErrorIs(t, s.DeleteAbsence(ctx, active[0].ID), generic.ErrAbsenceNotFound)

	mine, err := s.ListAbsences(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestSQLite_TemplatesAndPersons(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	empty, err := s.LoadTemplate(ctx, "ramasse")
	require.NoError(t, err)
	assert.Empty(t, empty.Slots)

	tpl := generic.Template{Kind: "ramasse", Slots: []generic.TemplateSlot{
		{Day: generic.Tuesday, Slot: "chauffeur", Nominee: "p1"},
		{Day: generic.Monday, Slot: "equipier1"},
	}}
	require.NoError(t, s.SaveTemplate(ctx, tpl))
	got, err := s.LoadTemplate(ctx, "ramasse")
	require.NoError(t, err)
	assert.Equal(t, tpl, got)

	require.NoError(t, s.SavePerson(ctx, generic.Person{ID: "p2", Name: "Zoé"}))
	require.NoError(t, s.SavePerson(ctx, generic.Person{ID: "p1", Name: "Alain", Email: "alain@example.org"}))

	name, err := s.DisplayName(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "Zoé", name)
	_, err = s.DisplayName(ctx, "p9")
	assert.ErrorIs(t, err, generic.ErrPersonNotFound)

	persons, err := s.ListPersons(ctx)
	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.Equal(t, "Alain", persons[0].Name)
	assert.Equal(t, "alain@example.org", persons[0].Email)
}

func TestSQLite_Snapshot(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveInstance(ctx, sampleInstance()))

	dest := filepath.Join(t.TempDir(), "copy.db")
	require.NoError(t, s.Snapshot(ctx, dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	copied, err := sqlite.New(dest)
	require.NoError(t, err)
	defer copied.Close()
	got, err := copied.LoadInstance(ctx, "ramasse", w10)
	require.NoError(t, err)
	assert.Len(t, got.Rows, 3)
}

func TestSQLite_MemoryDatabase(t *testing.T) {
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.SaveInstance(ctx, sampleInstance()))
	_, err = s.LoadInstance(ctx, "ramasse", w10)
	assert.NoError(t, err)
}
