package generic

import "fmt"

// =============================================================================
// RECONCILIATION - Re-derive absence flags from the ledger
// =============================================================================

// Reconcile recomputes Row.Absent for every unresolved row.
//
// Rows holding a substitute are skipped entirely: a human already decided
// who covers the seat, and the ledger changing afterwards must not undo it.
// Only Absent is ever written. The input instance is not modified.
//
// Running Reconcile again with the same ledger reports changed == false.
func Reconcile(inst *Instance, ledger AbsenceLedger) (*Instance, bool, error) {
	if inst == nil {
		return nil, false, fmt.Errorf("%w: nil instance", ErrMalformedRoster)
	}
	out := inst.Clone()
	changed := false

	for i := range out.Rows {
		row := &out.Rows[i]
		date, err := rowDate(out, *row)
		if err != nil {
			return nil, false, err
		}
		if row.Locked() {
			continue
		}
		if absent := ledger.Covers(row.Assignee, date); absent != row.Absent {
			row.Absent = absent
			changed = true
		}
	}
	return out, changed, nil
}

// ChangedRows lists rows whose Absent flag differs between before and after.
// Both instances must come from the same generation (Reconcile keeps row order).
func ChangedRows(before, after *Instance) []Row {
	var out []Row
	for i := range after.Rows {
		if i < len(before.Rows) && before.Rows[i].Absent != after.Rows[i].Absent {
			out = append(out, after.Rows[i])
		}
	}
	return out
}

// CheckAgainstTemplate verifies that every row of the instance is a seat of
// the template. Rows left over from an older template are malformed.
func CheckAgainstTemplate(inst *Instance, tpl Template) error {
	for _, r := range inst.Rows {
		if !tpl.Has(r.Day, r.Slot) {
			return &MalformedRosterError{
				Kind: inst.Kind, Week: inst.Week, Day: r.Day, Slot: r.Slot,
				Reason: "row is not part of the current template",
			}
		}
	}
	return nil
}

func rowDate(inst *Instance, r Row) (TimePoint, error) {
	date, err := inst.Week.DateOf(r.Day)
	if err != nil {
		return TimePoint{}, &MalformedRosterError{
			Kind: inst.Kind, Week: inst.Week, Day: r.Day, Slot: r.Slot,
			Reason: fmt.Sprintf("cannot date row: %v", err),
		}
	}
	return date, nil
}
