package cmd

import (
	"restogrades/internal/db"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMigrateCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, revert or inspect the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(db.MigrateUp), string(db.MigrateDown), string(db.MigrateStatus)},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := db.MigrateUp
			if len(args) == 1 {
				direction = db.MigrateDirection(args[0])
			}

			cfg, err := LoadConfig(v, DefaultEnvFiles...)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.AtExit()

			store, err := db.Connect(cmd.Context(), log, cfg.DatabaseURL)
			if err != nil {
				return errors.Wrap(err, "failed to open database")
			}
			defer store.Close()

			return store.Migrate(direction)
		},
	}
}
