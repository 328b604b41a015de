// Package cli wires configuration, storage and the planner into the roster command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/roster-engine/backup"
	"github.com/warp/roster-engine/config"
	"github.com/warp/roster-engine/logger"
	"github.com/warp/roster-engine/planning"
	"github.com/warp/roster-engine/store/sqlite"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once the root command has run.
type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "roster",
		Short:        "Weekly roster engine for the food bank plannings",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			if err := planning.Register(); err != nil {
				return fmt.Errorf("failed to register plannings: %w", err)
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./roster.yaml or ./config/roster.yaml, env: ROSTER_*)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newGenerateCmd(a))
	cmd.AddCommand(newReconcileCmd(a))
	cmd.AddCommand(newBackupCmd(a))

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}

	return cmd
}

// open returns the store and a planner on top of it. The caller closes the store.
func (a *app) open() (*sqlite.Store, *planning.Planner, error) {
	store, err := sqlite.Open(a.cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	store.SetLogger(a.log)
	return store, planning.NewPlanner(store, a.log), nil
}

// pusher returns nil when backups are disabled and force is false.
func (a *app) pusher(store *sqlite.Store, force bool) (*backup.Pusher, error) {
	if !a.cfg.Backup.Enabled && !force {
		return nil, nil
	}
	sink, err := backup.NewDirectorySink(a.cfg.Backup.Directory, a.cfg.Backup.Keep)
	if err != nil {
		return nil, err
	}
	return backup.NewPusher(store, sink, a.log.Named("backup")), nil
}
