package planning

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp/roster-engine/generic"
	"go.uber.org/zap"
)

// =============================================================================
// PLANNER - Persisted roster workflows
// =============================================================================

// Planner runs the engine against the stores: it loads inputs, calls the
// pure generic operations, and persists their results through the narrowest
// write path each one needs.
type Planner struct {
	Stores generic.Stores
	Logger *zap.Logger
}

func NewPlanner(stores generic.Stores, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{Stores: stores, Logger: logger}
}

// View is a reconciled roster ready for display.
type View struct {
	Definition  generic.KindDefinition
	Instance    *generic.Instance
	Assignments []generic.Assignment
	Workload    []generic.PersonLoad
	Changed     int // absence flags rewritten by this view
}

// GenerateOptions controls regeneration of an existing week.
type GenerateOptions struct {
	// Overwrite must be set to replace an existing roster. Regeneration
	// drops every manual edit of the week.
	Overwrite bool
}

// Generate instantiates the template of kind for week and saves it.
//
// If the week already has a roster and opts.Overwrite is false, it returns
// ErrRosterExists. An empty template yields an empty Generation that is not
// saved.
func (p *Planner) Generate(ctx context.Context, kind generic.Kind, week generic.Week, opts GenerateOptions) (generic.Generation, error) {
	def, err := generic.LookupKind(kind)
	if err != nil {
		return generic.Generation{}, err
	}
	period, err := week.Period()
	if err != nil {
		return generic.Generation{}, err
	}

	release, err := p.Stores.LockRegeneration(ctx, kind, week)
	if err != nil {
		if errors.Is(err, generic.ErrConcurrentRegeneration) {
			regenerationConflicts.Inc()
		}
		return generic.Generation{}, err
	}
	defer release()

	existing, err := p.Stores.LoadInstance(ctx, kind, week)
	switch {
	case err == nil && !opts.Overwrite:
		return generic.Generation{}, fmt.Errorf("%w: %s %s", generic.ErrRosterExists, kind, week)
	case err != nil && !errors.Is(err, generic.ErrInstanceNotFound):
		return generic.Generation{}, err
	}

	tpl, err := p.Stores.LoadTemplate(ctx, kind)
	if err != nil {
		return generic.Generation{}, err
	}
	if err := ValidateTemplate(def, tpl); err != nil {
		return generic.Generation{}, err
	}
	ledger, err := p.Stores.LoadActiveRanges(ctx, period)
	if err != nil {
		return generic.Generation{}, err
	}

	gen, err := generic.Generate(kind, week, tpl, ledger)
	if err != nil {
		return generic.Generation{}, err
	}
	if gen.EmptyTemplate {
		p.Logger.Warn("no template defined, nothing generated",
			zap.String("kind", string(kind)), zap.Stringer("week", week))
		return gen, nil
	}
	if existing != nil {
		// keep the instance identity stable across regenerations
		gen.Instance.ID = existing.ID
	}
	if err := p.Stores.SaveInstance(ctx, gen.Instance); err != nil {
		return generic.Generation{}, err
	}

	rostersGenerated.WithLabelValues(string(kind)).Inc()
	p.Logger.Info("roster generated",
		zap.String("kind", string(kind)),
		zap.Stringer("week", week),
		zap.Int("rows", len(gen.Instance.Rows)),
		zap.Bool("regenerated", existing != nil))
	return gen, nil
}

// Reconcile brings the absence flags of a stored week up to date and
// returns the reconciled instance with the number of flags rewritten.
func (p *Planner) Reconcile(ctx context.Context, kind generic.Kind, week generic.Week) (*generic.Instance, int, error) {
	inst, err := p.Stores.LoadInstance(ctx, kind, week)
	if err != nil {
		return nil, 0, err
	}
	tpl, err := p.Stores.LoadTemplate(ctx, kind)
	if err != nil {
		return nil, 0, err
	}
	if err := generic.CheckAgainstTemplate(inst, tpl); err != nil {
		return nil, 0, err
	}
	period, err := week.Period()
	if err != nil {
		return nil, 0, err
	}
	ledger, err := p.Stores.LoadActiveRanges(ctx, period)
	if err != nil {
		return nil, 0, err
	}

	out, changed, err := generic.Reconcile(inst, ledger)
	if err != nil {
		return nil, 0, err
	}
	if !changed {
		return out, 0, nil
	}

	rows := generic.ChangedRows(inst, out)
	written, err := p.Stores.MarkAbsences(ctx, inst.ID, rows)
	if err != nil {
		return nil, 0, err
	}
	refused := len(rows) - written
	absenceFlagChanges.WithLabelValues(string(kind)).Add(float64(written))
	p.Logger.Info("roster reconciled",
		zap.String("kind", string(kind)),
		zap.Stringer("week", week),
		zap.Int("changed", written),
		zap.Int("refused", refused))

	if refused > 0 {
		// a substitute was set in between; show what is stored
		out, err = p.Stores.LoadInstance(ctx, kind, week)
		if err != nil {
			return nil, written, err
		}
	}
	return out, written, nil
}

// View reconciles a week and resolves who holds each seat.
func (p *Planner) View(ctx context.Context, kind generic.Kind, week generic.Week) (*View, error) {
	def, err := generic.LookupKind(kind)
	if err != nil {
		return nil, err
	}
	inst, changed, err := p.Reconcile(ctx, kind, week)
	if err != nil {
		return nil, err
	}

	v := &View{
		Definition: def,
		Instance:   inst,
		Workload:   generic.Workload(inst, def),
		Changed:    changed,
	}
	for a := range generic.ResolveDisplay(inst) {
		v.Assignments = append(v.Assignments, a)
	}
	return v, nil
}

// Edit applies a human choice to one seat and saves that row only.
//
// When the seat is not absent the requested person becomes the assignee and
// their own availability is checked right away, so the saved row is as
// reconciled as a fresh generation would be.
func (p *Planner) Edit(ctx context.Context, kind generic.Kind, week generic.Week, day generic.Day, slot generic.SlotKey, person generic.PersonID) (generic.Row, error) {
	if !person.IsZero() {
		if _, err := p.Stores.DisplayName(ctx, person); err != nil {
			return generic.Row{}, err
		}
	}
	inst, err := p.Stores.LoadInstance(ctx, kind, week)
	if err != nil {
		return generic.Row{}, err
	}
	out, err := generic.ApplyEdit(inst, day, slot, person)
	if err != nil {
		return generic.Row{}, err
	}
	idx := inst.Find(day, slot)
	prev, row := inst.Rows[idx], out.Rows[idx]

	outcome := "cleared"
	switch {
	case !prev.Absent:
		outcome = "assignee"
		date, err := week.DateOf(day)
		if err != nil {
			return generic.Row{}, err
		}
		ledger, err := p.Stores.LoadActiveRanges(ctx, generic.Period{Start: date, End: date})
		if err != nil {
			return generic.Row{}, err
		}
		row.Absent = ledger.Covers(row.Assignee, date)
	case !row.Substitute.IsZero():
		outcome = "substitute"
	}

	if err := p.Stores.SaveRow(ctx, inst.ID, row); err != nil {
		return generic.Row{}, err
	}
	manualEdits.WithLabelValues(string(kind), outcome).Inc()
	p.Logger.Info("roster seat edited",
		zap.String("kind", string(kind)),
		zap.Stringer("week", week),
		zap.Stringer("day", day),
		zap.String("slot", string(slot)),
		zap.String("outcome", outcome),
		zap.String("assignee", string(row.Assignee)),
		zap.String("substitute", string(row.Substitute)))
	return row, nil
}

// SaveTemplate validates and stores the template of a planning.
func (p *Planner) SaveTemplate(ctx context.Context, tpl generic.Template) error {
	def, err := generic.LookupKind(tpl.Kind)
	if err != nil {
		return err
	}
	if err := ValidateTemplate(def, tpl); err != nil {
		return err
	}
	return p.Stores.SaveTemplate(ctx, tpl)
}

// SweepReport summarises a ReconcileAll run.
type SweepReport struct {
	Rosters int
	Changed int
	Failed  int
}

// ReconcileAll reconciles every registered planning for each week. Weeks
// that were never generated are skipped. A failing roster is logged and
// counted; the sweep goes on with the others.
func (p *Planner) ReconcileAll(ctx context.Context, weeks []generic.Week) (SweepReport, error) {
	var report SweepReport
	for _, def := range generic.ListKinds() {
		for _, w := range weeks {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			_, changed, err := p.Reconcile(ctx, def.Kind, w)
			switch {
			case errors.Is(err, generic.ErrInstanceNotFound):
				continue
			case err != nil:
				report.Failed++
				p.Logger.Error("reconciliation failed",
					zap.String("kind", string(def.Kind)), zap.Stringer("week", w), zap.Error(err))
				continue
			}
			report.Rosters++
			report.Changed += changed
		}
	}
	return report, nil
}
