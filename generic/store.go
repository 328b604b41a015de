/*
store.go - Persistence contracts for templates, rosters, absences and people

PURPOSE:
  Defines the interface between the engine's callers and the database.
  The engine itself is pure; these contracts are what a planner needs to
  load its inputs and persist its outputs.

KEY INTERFACES:
  TemplateStore:   weekly templates per planning kind
  RosterStore:     materialised weeks (full replace, per-row edits)
  AbsenceStore:    the absence ledger
  PersonDirectory: volunteer names

WRITE PATHS ON ROSTERS:
  - SaveInstance(): atomic full replace, used by (re)generation only
  - SaveRow():      atomic single-row update, used by manual edits
  - MarkAbsences(): atomic absence-flag-only batch update that refuses
                    rows with a substitute, used by reconciliation

REGENERATION:
  Regeneration deletes and recreates every row of a week. Callers take
  LockRegeneration() first; a second caller for the same key gets
  ErrConcurrentRegeneration instead of silently overwriting.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing
*/
package generic

import "context"

type TemplateStore interface {
	// LoadTemplate returns the template of kind. A kind without any saved
	// slot returns an empty template, not an error.
	LoadTemplate(ctx context.Context, kind Kind) (Template, error)

	// SaveTemplate replaces the whole template of tpl.Kind.
	SaveTemplate(ctx context.Context, tpl Template) error
}

type RosterStore interface {
	// LoadInstance returns ErrInstanceNotFound when the week was never generated.
	LoadInstance(ctx context.Context, kind Kind, week Week) (*Instance, error)

	// SaveInstance replaces every row of (inst.Kind, inst.Week) atomically.
	SaveInstance(ctx context.Context, inst *Instance) error

	// SaveRow updates one row of an existing instance atomically.
	SaveRow(ctx context.Context, instanceID string, row Row) error

	// MarkAbsences copies the Absent flag of each given row onto the stored
	// row with the same (day, slot), skipping rows that have a substitute.
	// The batch is all-or-nothing: on error no flag is changed. written is
	// the number of rows actually updated.
	MarkAbsences(ctx context.Context, instanceID string, rows []Row) (written int, err error)

	// LockRegeneration reserves (kind, week) for a destructive regeneration.
	// The returned release func must be called once the regeneration is done.
	LockRegeneration(ctx context.Context, kind Kind, week Week) (release func(), err error)

	// ListInstances returns the generated weeks of kind, most recent first.
	ListInstances(ctx context.Context, kind Kind) ([]Week, error)
}

type AbsenceStore interface {
	// LoadActiveRanges returns every absence overlapping window.
	LoadActiveRanges(ctx context.Context, window Period) (AbsenceLedger, error)

	SaveAbsence(ctx context.Context, a AbsenceRange) error
	DeleteAbsence(ctx context.Context, id string) error

	// ListAbsences returns the absences of person, or all of them when person is empty.
	ListAbsences(ctx context.Context, person PersonID) ([]AbsenceRange, error)
}

type PersonDirectory interface {
	// DisplayName returns ErrPersonNotFound for unknown ids.
	DisplayName(ctx context.Context, id PersonID) (string, error)

	SavePerson(ctx context.Context, p Person) error
	ListPersons(ctx context.Context) ([]Person, error)
}

// Stores bundles every contract, as implemented by a single backing database.
type Stores interface {
	TemplateStore
	RosterStore
	AbsenceStore
	PersonDirectory
}
