package generic

import "iter"

// =============================================================================
// DISPLAY - Effective person per seat
// =============================================================================

// ResolveDisplay yields one Assignment per row, in row order. Person is the
// substitute when the row is absent and has one, otherwise the assignee.
//
// The sequence is lazy and can be ranged over any number of times; it reads
// nothing but the instance. Rows that cannot be dated get a zero Date.
func ResolveDisplay(inst *Instance) iter.Seq[Assignment] {
	return func(yield func(Assignment) bool) {
		if inst == nil {
			return
		}
		for _, r := range inst.Rows {
			person, sub := r.Effective()
			date, _ := inst.Week.DateOf(r.Day)
			a := Assignment{
				Day:          r.Day,
				Date:         date,
				Slot:         r.Slot,
				Person:       person,
				Substitution: sub,
			}
			if !yield(a) {
				return
			}
		}
	}
}

// ByDay groups the display of an instance by roster day.
func ByDay(inst *Instance) map[Day][]Assignment {
	out := make(map[Day][]Assignment)
	for a := range ResolveDisplay(inst) {
		out[a.Day] = append(out[a.Day], a)
	}
	return out
}
