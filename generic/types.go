/*
Package generic provides the core roster reconciliation engine.

PURPOSE:
  This package contains domain-agnostic types and algorithms for weekly
  rosters. Whether planning pickup rounds, pallet preparation, weighing or
  distribution, the same engine instantiates dated assignments from a weekly
  template, tracks which assignees are absent, and records human-chosen
  substitutes without ever losing the original holder.

KEY CONCEPTS IN THIS FILE (types.go):
  - Template: the reusable (day, slot) -> nominee pattern of a planning
  - Instance: the materialised roster of one (kind, ISO week)
  - Row: one (day, slot) seat with assignee, absence flag and substitute
  - AbsenceLedger: the date ranges during which people are unavailable

INVARIANTS:
  A. Reconciliation only ever changes Row.Absent, never Row.Substitute.
  B. A row with a substitute is resolved: reconciliation leaves it untouched.
  C. Effective person = substitute if absent and substitute set, else assignee.

USAGE:
  gen, err := generic.Generate(kind, week, template, ledger)
  inst, changed, err := generic.Reconcile(gen.Instance, ledger)
  for a := range generic.ResolveDisplay(inst) { ... }

SEE ALSO:
  - generate.go: Generation from a template
  - reconcile.go: Absence reconciliation
  - edit.go: Manual edit decision table
  - display.go: Effective person resolution
  - store.go: Persistence contracts
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// PersonID is an opaque volunteer identifier. The empty value means "nobody".
type PersonID string

func (p PersonID) IsZero() bool { return p == "" }

// SlotKey is a stable role-seat name within a day ("froid1", "chauffeur").
type SlotKey string

// Kind tags a planning ("ramasse", "palettes", ...).
type Kind string

// =============================================================================
// KIND DEFINITION - What seats a planning has
// =============================================================================

// SlotDefinition describes one seat of a planning.
type SlotDefinition struct {
	Key   SlotKey
	Label string
	Hours decimal.Decimal // duration of the duty, used for workload summaries
}

// KindDefinition is the configuration of one planning.
type KindDefinition struct {
	Kind  Kind
	Label string
	Days  []Day
	Slots []SlotDefinition
}

// Slot returns the slot definition for key.
func (d KindDefinition) Slot(key SlotKey) (SlotDefinition, bool) {
	for _, s := range d.Slots {
		if s.Key == key {
			return s, true
		}
	}
	return SlotDefinition{}, false
}

// HasDay reports whether the planning runs on day. An empty Days list means every work day.
func (d KindDefinition) HasDay(day Day) bool {
	if len(d.Days) == 0 {
		return day.Valid()
	}
	for _, x := range d.Days {
		if x == day {
			return true
		}
	}
	return false
}

// =============================================================================
// TEMPLATE - Weekly pattern
// =============================================================================

type TemplateSlot struct {
	Day     Day
	Slot    SlotKey
	Nominee PersonID
}

// Template is the ordered week-independent pattern of a planning.
type Template struct {
	Kind  Kind
	Slots []TemplateSlot
}

func (t Template) Has(day Day, slot SlotKey) bool {
	for _, s := range t.Slots {
		if s.Day == day && s.Slot == slot {
			return true
		}
	}
	return false
}

// =============================================================================
// ROSTER INSTANCE - One materialised week
// =============================================================================

type Row struct {
	Day        Day
	Slot       SlotKey
	Assignee   PersonID
	Absent     bool
	Substitute PersonID
}

// Effective returns the person who actually performs the duty.
func (r Row) Effective() (PersonID, bool) {
	if r.Absent && !r.Substitute.IsZero() {
		return r.Substitute, true
	}
	return r.Assignee, false
}

// Locked reports whether a human has resolved the row with a substitute.
func (r Row) Locked() bool { return !r.Substitute.IsZero() }

type Instance struct {
	ID          string
	Kind        Kind
	Week        Week
	Rows        []Row
	GeneratedAt time.Time
}

// Clone returns a deep copy so engine operations never mutate their input.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	c := *i
	c.Rows = append([]Row(nil), i.Rows...)
	return &c
}

// Find returns the index of the row for (day, slot), or -1.
func (i *Instance) Find(day Day, slot SlotKey) int {
	for idx, r := range i.Rows {
		if r.Day == day && r.Slot == slot {
			return idx
		}
	}
	return -1
}

// =============================================================================
// ABSENCE LEDGER
// =============================================================================

type AbsenceRange struct {
	ID       string
	PersonID PersonID
	Period   Period
	Reason   string
}

// AbsenceLedger is a read-only view of absence ranges.
type AbsenceLedger []AbsenceRange

// Covers reports whether person is absent on date.
func (l AbsenceLedger) Covers(person PersonID, date TimePoint) bool {
	if person.IsZero() {
		return false
	}
	for _, a := range l {
		if a.PersonID == person && a.Period.Contains(date) {
			return true
		}
	}
	return false
}

// =============================================================================
// PEOPLE AND DISPLAY
// =============================================================================

// Person is a volunteer as known to the directory.
type Person struct {
	ID    PersonID
	Name  string
	Email string
	Phone string
}

// Assignment is one resolved seat of a roster.
type Assignment struct {
	Day          Day
	Date         TimePoint
	Slot         SlotKey
	Person       PersonID
	Substitution bool
}
