package generic

// =============================================================================
// MANUAL EDIT - A human picks who holds a seat
// =============================================================================

// ApplyEdit applies a person chosen by a human to the (day, slot) seat.
//
//	row.Absent | requested == assignee | action
//	-----------+-----------------------+----------------------------------------
//	false      | any                   | assignee = requested, substitute cleared
//	true       | true                  | substitute cleared
//	true       | false                 | substitute = requested, assignee kept
//
// An absent assignee is never replaced: the original holder stays on record
// and the requested person goes to the substitute seat. The input instance
// is not modified.
func ApplyEdit(inst *Instance, day Day, slot SlotKey, requested PersonID) (*Instance, error) {
	idx := -1
	if inst != nil {
		idx = inst.Find(day, slot)
	}
	if idx < 0 {
		e := &SlotNotFoundError{Day: day, Slot: slot}
		if inst != nil {
			e.Kind, e.Week = inst.Kind, inst.Week
		}
		return nil, e
	}

	out := inst.Clone()
	out.Rows[idx] = EditRow(out.Rows[idx], requested)
	return out, nil
}

// EditRow is the decision table of ApplyEdit for a single row.
func EditRow(row Row, requested PersonID) Row {
	switch {
	case !row.Absent:
		row.Assignee = requested
		row.Substitute = ""
	case requested == row.Assignee:
		row.Substitute = ""
	default:
		row.Substitute = requested
	}
	return row
}
