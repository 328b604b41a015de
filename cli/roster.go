package cli

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/planning"
)

func parseWeek(year, week string) (generic.Week, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return generic.Week{}, fmt.Errorf("invalid year %q", year)
	}
	n, err := strconv.Atoi(week)
	if err != nil {
		return generic.Week{}, fmt.Errorf("invalid week %q", week)
	}
	return generic.NewWeek(y, n)
}

func newGenerateCmd(a *app) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "generate <kind> <year> <week>",
		Short: "Generate a planning week from its template",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := generic.Kind(args[0])
			week, err := parseWeek(args[1], args[2])
			if err != nil {
				return err
			}

			store, planner, err := a.open()
			if err != nil {
				return err
			}
			defer store.Close()

			gen, err := planner.Generate(cmd.Context(), kind, week, planning.GenerateOptions{Overwrite: confirm})
			if err != nil {
				if errors.Is(err, generic.ErrRosterExists) {
					return fmt.Errorf("%w (rerun with --confirm to discard the manual edits of that week)", err)
				}
				return err
			}
			out := cmd.OutOrStdout()
			if gen.EmptyTemplate {
				fmt.Fprintf(out, "%s has no template, nothing generated\n", kind)
				return nil
			}
			fmt.Fprintf(out, "%s %s generated (%d seats)\n", kind, week, len(gen.Instance.Rows))
			return printRows(cmd, gen.Instance)
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Overwrite an existing week")
	return cmd
}

func newReconcileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <year> <week>",
		Short: "Refresh absence flags of every planning for a week",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := parseWeek(args[0], args[1])
			if err != nil {
				return err
			}
			store, planner, err := a.open()
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := planner.ReconcileAll(cmd.Context(), []generic.Week{week})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rosters, %d flags changed, %d failed\n",
				week, report.Rosters, report.Changed, report.Failed)
			if report.Failed > 0 {
				return fmt.Errorf("%d rosters could not be reconciled", report.Failed)
			}
			return nil
		},
	}
}

// printRows lists the seats day by day with the person who holds each one.
func printRows(cmd *cobra.Command, inst *generic.Instance) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tDATE\tSLOT\tPERSON\tABSENT\tSUBSTITUTION")
	days := generic.ByDay(inst)
	for _, d := range generic.WorkDays {
		for _, a := range days[d] {
			r := inst.Rows[inst.Find(a.Day, a.Slot)]
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				a.Day, a.Date, a.Slot, a.Person, yesNo(r.Absent), yesNo(a.Substitution))
		}
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "oui"
	}
	return "non"
}
