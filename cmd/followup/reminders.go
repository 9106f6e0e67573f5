package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/followup/internal/app"
	"github.com/nhle/followup/internal/engine"
	"github.com/nhle/followup/internal/model"
)

func newAddCmd(a **app.App) *cobra.Command {
	var (
		note  string
		date  string
		at    string
		media string
	)

	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Create a reminder",
		Long: `Create a reminder. Without --date the default due time is used,
rolling over to tomorrow once it has passed today.

Examples:
  followup add Call the bank
  followup add "Review draft" --date 2024-03-10 --time 09:30
  followup add Read later --media link --note "https://example.com"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *a
			r, err := s.Session.Create(cmd.Context(), engine.CreateInput{
				Title:     strings.Join(args, " "),
				Note:      note,
				DueDate:   date,
				DueTime:   at,
				MediaType: model.ParseMediaType(media),
				Source:    model.SourceManual,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLine(s.Session.Project(r, s.Now())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "Note text")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&at, "time", "t", "", "Due time (HH:MM, 24-hour)")
	cmd.Flags().StringVarP(&media, "media", "m", string(model.MediaText), "Media type (text, link, file, image, video, voice)")

	return cmd
}

func newListCmd(a **app.App) *cobra.Command {
	var (
		statusFlag string
		media      string
		query      string
		upcoming   int
		completed  bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List reminders",
		Aliases: []string{"ls"},
		Long: `List reminders projected against the current time.

Examples:
  followup list                    # everything, in collection order
  followup list --status overdue   # one segment
  followup list -q invoice         # search title and note
  followup list --upcoming 3       # the next three due
  followup list --completed        # most recently completed first`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *a
			now := s.Now()

			var views []model.ViewModel
			switch {
			case completed:
				views = s.Session.Completed(now)
			case cmd.Flags().Changed("upcoming"):
				views = s.Session.UpcomingSoon(now, upcoming)
			default:
				f := engine.Filter{Query: query}
				if statusFlag != "" && statusFlag != "all" {
					st := model.Status(statusFlag)
					if !st.Valid() {
						return fmt.Errorf("unknown status %q", statusFlag)
					}
					f.Status = st
				}
				if media != "" {
					f.MediaType = model.ParseMediaType(media)
				}
				views = s.Session.Views(now, f)
			}

			if asJSON {
				return outputJSON(cmd.OutOrStdout(), views)
			}
			renderList(cmd.OutOrStdout(), views)
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFlag, "status", "s", "", "Filter by status (overdue, today, upcoming, completed, all)")
	cmd.Flags().StringVarP(&media, "media", "m", "", "Filter by media type")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive search of title and note")
	cmd.Flags().IntVar(&upcoming, "upcoming", 3, "Show the next N open reminders due soonest")
	cmd.Flags().BoolVar(&completed, "completed", false, "Show completed reminders, most recent first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newShowCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one reminder with attachments and activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *a
			id, err := resolveID(s, args[0])
			if err != nil {
				return err
			}
			r, _ := s.Session.Get(id)
			s.Session.SetActive(id)
			fmt.Fprintln(cmd.OutOrStdout(), renderDetail(s.Session.Project(r, s.Now())))
			return nil
		},
	}
}

// lifecycleCmd builds a single-id command around one session mutation.
func lifecycleCmd(
	a **app.App,
	use, short string,
	run func(cmd *cobra.Command, s *app.App, id string) (model.Reminder, bool, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *a
			id, err := resolveID(s, args[0])
			if err != nil {
				return err
			}
			r, changed, err := run(cmd, s, id)
			if err != nil {
				return err
			}
			if !changed {
				return fmt.Errorf("reminder %s was not changed", shortID(id))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLine(s.Session.Project(r, s.Now())))
			return nil
		},
	}
}

func newDoneCmd(a **app.App) *cobra.Command {
	return lifecycleCmd(a, "done", "Mark a reminder completed",
		func(cmd *cobra.Command, s *app.App, id string) (model.Reminder, bool, error) {
			return s.Session.Complete(cmd.Context(), id)
		})
}

func newUndoCmd(a **app.App) *cobra.Command {
	return lifecycleCmd(a, "undo", "Reopen a completed reminder",
		func(cmd *cobra.Command, s *app.App, id string) (model.Reminder, bool, error) {
			return s.Session.Undo(cmd.Context(), id)
		})
}

func newSnoozeCmd(a **app.App) *cobra.Command {
	var (
		minutes int
		preset  string
	)

	cmd := lifecycleCmd(a, "snooze", "Push a reminder's due time later",
		func(cmd *cobra.Command, s *app.App, id string) (model.Reminder, bool, error) {
			switch {
			case preset != "":
				p, ok := s.Engine.Settings().Preset(preset)
				if !ok {
					return model.Reminder{}, false, fmt.Errorf("unknown snooze preset %q", preset)
				}
				return s.Session.SnoozeBy(cmd.Context(), id, p.Minutes)
			case cmd.Flags().Changed("minutes"):
				if minutes <= 0 || minutes > engine.MaxSnoozeMinutes {
					return model.Reminder{}, false, fmt.Errorf("--minutes must be between 1 and %d", engine.MaxSnoozeMinutes)
				}
				return s.Session.SnoozeBy(cmd.Context(), id, minutes)
			default:
				return s.Session.Snooze(cmd.Context(), id)
			}
		})
	cmd.Long = `Push a reminder back, counting from its due time or from now, whichever
is later. Without flags the first snooze preset is used. --minutes is
capped at 366 days.

Examples:
  followup snooze 3f2a
  followup snooze 3f2a --minutes 45
  followup snooze 3f2a --preset "+3h"`

	cmd.Flags().IntVar(&minutes, "minutes", 0, "Snooze by this many minutes")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "Snooze preset id or label")

	return cmd
}

func newRescheduleCmd(a **app.App) *cobra.Command {
	var (
		date string
		at   string
	)

	cmd := lifecycleCmd(a, "reschedule", "Set a new due date and time",
		func(cmd *cobra.Command, s *app.App, id string) (model.Reminder, bool, error) {
			return s.Session.Reschedule(cmd.Context(), id, engine.ScheduleInput{DueDate: date, DueTime: at})
		})

	cmd.Flags().StringVarP(&date, "date", "d", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&at, "time", "t", "", "Due time (HH:MM, 24-hour)")

	return cmd
}

func newRemoveCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Short:   "Delete a reminder",
		Aliases: []string{"delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *a
			id, err := resolveID(s, args[0])
			if err != nil {
				return err
			}
			_, removed, err := s.Session.Remove(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("reminder %s not found", shortID(id))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortID(id))
			return nil
		},
	}
}
