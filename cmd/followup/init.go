package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/followup/internal/app"
	"github.com/nhle/followup/internal/model"
)

func newInitCmd(a **app.App, configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Long: `Write the configuration currently in effect (defaults, file values and
FOLLOWUP_* environment overrides) to the config file so it can be edited.

Examples:
  followup init
  FOLLOWUP_SHARE_HOST=imap.example.com followup init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config %s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("checking config %s: %w", path, err)
			}

			if err := model.SaveConfig(path, (*a).Config); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}
