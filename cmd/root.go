package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"restogrades/internal/api"
	"restogrades/internal/db"
	"restogrades/internal/logging"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the restogrades command tree. The root command serves
// the HTTP API.
func NewRootCommand(version string) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "restogrades",
		Short:         "Serve the restaurants and inspection grades API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(v, DefaultEnvFiles...)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	flags := root.PersistentFlags()
	flags.String("env", "", "Runtime environment: development, test or production (or set APP_ENV)")
	flags.String("db", "", "SQLite path or postgres:// URL, overrides DATABASE_URL")
	flags.Int("port", 0, "Port to listen on (or set PORT)")
	_ = v.BindPFlag("app_env", flags.Lookup("env"))
	_ = v.BindPFlag("db", flags.Lookup("db"))
	_ = v.BindPFlag("port", flags.Lookup("port"))

	root.AddCommand(newMigrateCommand(v))
	return root
}

// Execute runs the root command until it returns or the process is signalled.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand(version).ExecuteContext(ctx)
}

func newLogger(cfg *Config) (*logging.Logger, error) {
	return logging.NewLogger(logging.Config{
		Environment: cfg.Env,
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
	})
}

func serve(ctx context.Context, cfg *Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.AtExit()

	store, err := db.Open(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer store.Close()

	srv := api.NewServer(log, api.Config{
		Port:               cfg.Port,
		ListLimit:          cfg.ListLimit,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AccessLog:          os.Stdout,
	}, store)

	log.Info("Starting restogrades", logging.String("env", cfg.Env), logging.Int("port", cfg.Port))
	return srv.Start(ctx)
}
