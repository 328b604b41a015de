// Package store provides in-memory implementations of the generic store contracts.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	templates    map[generic.Kind]generic.Template
	instances    map[instanceKey]*generic.Instance
	absences     map[string]generic.AbsenceRange
	persons      map[generic.PersonID]generic.Person
	regenerating map[instanceKey]bool
}

type instanceKey struct {
	Kind generic.Kind
	Week generic.Week
}

var _ generic.Stores = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		templates:    make(map[generic.Kind]generic.Template),
		instances:    make(map[instanceKey]*generic.Instance),
		absences:     make(map[string]generic.AbsenceRange),
		persons:      make(map[generic.PersonID]generic.Person),
		regenerating: make(map[instanceKey]bool),
	}
}

// =============================================================================
// TEMPLATES
// =============================================================================

func (m *Memory) LoadTemplate(_ context.Context, kind generic.Kind) (generic.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tpl, ok := m.templates[kind]
	if !ok {
		return generic.Template{Kind: kind}, nil
	}
	tpl.Slots = append([]generic.TemplateSlot(nil), tpl.Slots...)
	return tpl, nil
}

func (m *Memory) SaveTemplate(_ context.Context, tpl generic.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tpl.Slots = append([]generic.TemplateSlot(nil), tpl.Slots...)
	m.templates[tpl.Kind] = tpl
	return nil
}

// =============================================================================
// ROSTERS
// =============================================================================

func (m *Memory) LoadInstance(_ context.Context, kind generic.Kind, week generic.Week) (*generic.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, ok := m.instances[instanceKey{kind, week}]
	if !ok {
		return nil, generic.ErrInstanceNotFound
	}
	return inst.Clone(), nil
}

// SaveInstance replaces the whole week. A missing ID gets a fresh one.
func (m *Memory) SaveInstance(_ context.Context, inst *generic.Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	if inst.GeneratedAt.IsZero() {
		inst.GeneratedAt = time.Now().UTC()
	}
	m.instances[instanceKey{inst.Kind, inst.Week}] = inst.Clone()
	return nil
}

func (m *Memory) SaveRow(_ context.Context, instanceID string, row generic.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, err := m.instanceByID(instanceID)
	if err != nil {
		return err
	}
	idx := inst.Find(row.Day, row.Slot)
	if idx < 0 {
		return &generic.SlotNotFoundError{Kind: inst.Kind, Week: inst.Week, Day: row.Day, Slot: row.Slot}
	}
	inst.Rows[idx] = row
	return nil
}

// MarkAbsences resolves every row before touching any of them, so a batch
// with an unknown seat leaves the instance unchanged.
func (m *Memory) MarkAbsences(_ context.Context, instanceID string, rows []generic.Row) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, err := m.instanceByID(instanceID)
	if err != nil {
		return 0, err
	}
	idx := make([]int, len(rows))
	for i, r := range rows {
		idx[i] = inst.Find(r.Day, r.Slot)
		if idx[i] < 0 {
			return 0, &generic.SlotNotFoundError{Kind: inst.Kind, Week: inst.Week, Day: r.Day, Slot: r.Slot}
		}
	}

	written := 0
	for i, r := range rows {
		row := &inst.Rows[idx[i]]
		if row.Locked() {
			continue
		}
		row.Absent = r.Absent
		written++
	}
	return written, nil
}

func (m *Memory) instanceByID(id string) (*generic.Instance, error) {
	for _, inst := range m.instances {
		if inst.ID == id {
			return inst, nil
		}
	}
	return nil, fmt.Errorf("%w: id %s", generic.ErrInstanceNotFound, id)
}

func (m *Memory) LockRegeneration(_ context.Context, kind generic.Kind, week generic.Week) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := instanceKey{kind, week}
	if m.regenerating[k] {
		return nil, &generic.ConcurrentRegenerationError{Kind: kind, Week: week}
	}
	m.regenerating[k] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.regenerating, k)
			m.mu.Unlock()
		})
	}, nil
}

func (m *Memory) ListInstances(_ context.Context, kind generic.Kind) ([]generic.Week, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var weeks []generic.Week
	for k := range m.instances {
		if k.Kind == kind {
			weeks = append(weeks, k.Week)
		}
	}
	sort.Slice(weeks, func(i, j int) bool {
		if weeks[i].Year != weeks[j].Year {
			return weeks[i].Year > weeks[j].Year
		}
		return weeks[i].Number > weeks[j].Number
	})
	return weeks, nil
}

// =============================================================================
// ABSENCES
// =============================================================================

func (m *Memory) LoadActiveRanges(_ context.Context, window generic.Period) (generic.AbsenceLedger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ledger generic.AbsenceLedger
	for _, a := range m.absences {
		if a.Period.Overlaps(window) {
			ledger = append(ledger, a)
		}
	}
	sortAbsences(ledger)
	return ledger, nil
}

func (m *Memory) SaveAbsence(_ context.Context, a generic.AbsenceRange) error {
	if err := a.Period.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.absences[a.ID] = a
	return nil
}

func (m *Memory) DeleteAbsence(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.absences[id]; !ok {
		return generic.ErrAbsenceNotFound
	}
	delete(m.absences, id)
	return nil
}

func (m *Memory) ListAbsences(_ context.Context, person generic.PersonID) ([]generic.AbsenceRange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []generic.AbsenceRange
	for _, a := range m.absences {
		if person.IsZero() || a.PersonID == person {
			out = append(out, a)
		}
	}
	sortAbsences(out)
	return out, nil
}

func sortAbsences(as []generic.AbsenceRange) {
	sort.Slice(as, func(i, j int) bool {
		if !as[i].Period.Start.Equal(as[j].Period.Start) {
			return as[i].Period.Start.Before(as[j].Period.Start)
		}
		return as[i].ID < as[j].ID
	})
}

// =============================================================================
// PERSONS
// =============================================================================

func (m *Memory) DisplayName(_ context.Context, id generic.PersonID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.persons[id]
	if !ok {
		return "", generic.ErrPersonNotFound
	}
	return p.Name, nil
}

func (m *Memory) SavePerson(_ context.Context, p generic.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persons[p.ID] = p
	return nil
}

func (m *Memory) ListPersons(_ context.Context) ([]generic.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]generic.Person, 0, len(m.persons))
	for _, p := range m.persons {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
