package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/followup/internal/app"
	"github.com/nhle/followup/internal/logging"
	"github.com/nhle/followup/internal/model"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var application *app.App
	rootCmd := newRootCmd(&application)

	err := rootCmd.ExecuteContext(ctx)
	if application != nil {
		if closeErr := application.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "closing: %v\n", closeErr)
		}
	}
	stop()

	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a **app.App) *cobra.Command {
	var (
		configPath string
		logLevel   string
		owner      string
	)

	rootCmd := &cobra.Command{
		Use:          "followup",
		Short:        "Follow-up reminders from the terminal",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", model.DefaultConfigPath(), "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&owner, "owner", "", "Override the reminder owner")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := model.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if owner != "" {
			cfg.Owner = owner
		}

		logger := logging.New(cfg.Log.Level, cmd.ErrOrStderr())
		logger.WithField("config", configPath).Debug("configuration loaded")

		*a, err = app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("starting session: %w", err)
		}
		return nil
	}

	rootCmd.AddCommand(newInitCmd(a, &configPath))
	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newDoneCmd(a))
	rootCmd.AddCommand(newUndoCmd(a))
	rootCmd.AddCommand(newSnoozeCmd(a))
	rootCmd.AddCommand(newRescheduleCmd(a))
	rootCmd.AddCommand(newRemoveCmd(a))
	rootCmd.AddCommand(newStatsCmd(a))
	rootCmd.AddCommand(newSettingsCmd(a))
	rootCmd.AddCommand(newInboxCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))

	return rootCmd
}
