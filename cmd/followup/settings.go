package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/followup/internal/app"
	"github.com/nhle/followup/internal/model"
)

func newSettingsCmd(a **app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change reminder settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the default due time and snooze presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			printSettings(cmd, (*a).Session.Settings())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "due-time <HH:MM>",
		Short: "Set the default due time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *a
			if err := s.Session.UpdateDefaultDueTime(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSettings(cmd, s.Session.Settings())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "presets <minutes[=label]>...",
		Short: "Replace the snooze presets",
		Long: `Replace the snooze presets. Each argument is a number of minutes,
optionally followed by =label. Missing labels are generated.

Examples:
  followup settings presets 30 60 1440
  followup settings presets "90=After lunch" 180`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *a
			presets, err := parsePresets(args)
			if err != nil {
				return err
			}
			if _, err := s.Session.UpdateSnoozePresets(cmd.Context(), presets); err != nil {
				return err
			}
			printSettings(cmd, s.Session.Settings())
			return nil
		},
	})

	return cmd
}

func parsePresets(args []string) ([]model.SnoozePreset, error) {
	presets := make([]model.SnoozePreset, 0, len(args))
	for _, arg := range args {
		raw, label, _ := strings.Cut(arg, "=")
		minutes, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("parsing preset %q: %w", arg, err)
		}
		presets = append(presets, model.SnoozePreset{Label: strings.TrimSpace(label), Minutes: minutes})
	}
	return presets, nil
}

func printSettings(cmd *cobra.Command, s model.ReminderSettings) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Default due time: %s\n", s.DefaultDueTime)
	fmt.Fprintln(out, "Snooze presets:")
	for i, p := range s.SnoozePresets {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %-16s %5d min  %s\n", marker, p.Label, p.Minutes, p.ID)
	}
}
