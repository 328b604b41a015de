package generic

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WORKLOAD - Hours per effective person for a week
// =============================================================================

// PersonLoad sums what one person effectively covers in a roster.
type PersonLoad struct {
	Person        PersonID
	Seats         int
	Substitutions int
	Hours         decimal.Decimal
}

// Workload totals the duty hours of each effective person. Seats without
// anyone are ignored; slots unknown to the definition count for zero hours.
// The result is sorted by hours descending, then person.
func Workload(inst *Instance, def KindDefinition) []PersonLoad {
	loads := make(map[PersonID]*PersonLoad)
	for a := range ResolveDisplay(inst) {
		if a.Person.IsZero() {
			continue
		}
		l, ok := loads[a.Person]
		if !ok {
			l = &PersonLoad{Person: a.Person, Hours: decimal.Zero}
			loads[a.Person] = l
		}
		l.Seats++
		if a.Substitution {
			l.Substitutions++
		}
		if s, ok := def.Slot(a.Slot); ok {
			l.Hours = l.Hours.Add(s.Hours)
		}
	}

	out := make([]PersonLoad, 0, len(loads))
	for _, l := range loads {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Hours.Cmp(out[j].Hours); c != 0 {
			return c > 0
		}
		return out[i].Person < out[j].Person
	})
	return out
}

// TotalHours is the sum of the hours of every staffed seat.
func TotalHours(loads []PersonLoad) decimal.Decimal {
	total := decimal.Zero
	for _, l := range loads {
		total = total.Add(l.Hours)
	}
	return total
}
