package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// GENERATION - Template -> dated roster instance
// =============================================================================

// Generation is the result of instantiating a template for one week.
type Generation struct {
	Instance *Instance

	// EmptyTemplate is set when the template had no slot. The instance is
	// valid but has no rows; callers usually tell the user to define a model first.
	EmptyTemplate bool
}

// Generate materialises one row per template slot for the given week.
//
// Each row is dated Monday(week) + day offset, starts with the template
// nominee as assignee and no substitute, and is marked absent when the
// ledger covers the nominee on that date. The result is fully reconciled
// as of the ledger passed in.
//
// Generate is unconditional: confirming the overwrite of an existing
// instance is the caller's job.
func Generate(kind Kind, week Week, tpl Template, ledger AbsenceLedger) (Generation, error) {
	if err := week.Validate(); err != nil {
		return Generation{}, err
	}

	inst := &Instance{
		Kind:        kind,
		Week:        week,
		Rows:        make([]Row, 0, len(tpl.Slots)),
		GeneratedAt: time.Now().UTC(),
	}
	if len(tpl.Slots) == 0 {
		return Generation{Instance: inst, EmptyTemplate: true}, nil
	}

	seen := make(map[rowKey]bool, len(tpl.Slots))
	for _, s := range tpl.Slots {
		k := rowKey{s.Day, s.Slot}
		if seen[k] {
			return Generation{}, &MalformedRosterError{
				Kind: kind, Week: week, Day: s.Day, Slot: s.Slot,
				Reason: "slot appears twice on the same day in the template",
			}
		}
		seen[k] = true

		date, err := week.DateOf(s.Day)
		if err != nil {
			return Generation{}, &MalformedRosterError{
				Kind: kind, Week: week, Day: s.Day, Slot: s.Slot,
				Reason: fmt.Sprintf("cannot date template slot: %v", err),
			}
		}

		inst.Rows = append(inst.Rows, Row{
			Day:      s.Day,
			Slot:     s.Slot,
			Assignee: s.Nominee,
			Absent:   ledger.Covers(s.Nominee, date),
		})
	}
	return Generation{Instance: inst}, nil
}

type rowKey struct {
	day  Day
	slot SlotKey
}
