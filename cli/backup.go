package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Push a snapshot of the database to the backup directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.open()
			if err != nil {
				return err
			}
			defer store.Close()

			pusher, err := a.pusher(store, true)
			if err != nil {
				return err
			}
			name, err := pusher.Push(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup written: %s\n", name)
			return nil
		},
	}
}
