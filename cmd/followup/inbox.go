package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nhle/followup/internal/app"
	"github.com/nhle/followup/internal/credential"
	"github.com/nhle/followup/internal/share"
	"github.com/nhle/followup/internal/theme"
	"github.com/nhle/followup/internal/ui/watch"
)

func newInboxCmd(a **app.App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Import shared items from the configured mailbox",
		Long: `Fetch unseen messages from the share mailbox and turn each into a
reminder. Imported messages are marked as seen; messages that could not
be saved stay unseen and are retried on the next run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := (*a).ImportShared(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", share.DefaultBatchSize, "Maximum messages to import")

	cmd.AddCommand(newInboxPasswordCmd(a))

	return cmd
}

func newInboxPasswordCmd(a **app.App) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Store the mailbox password in the system keyring",
		Long: `Prompt for the mailbox password and store it in the system keyring.
When stdin is not a terminal the password is read from its first line.

Examples:
  followup inbox password
  pass show mail/imap | followup inbox password
  followup inbox password --delete`,
		RunE: func(cmd *cobra.Command, args []string) error {
			username := (*a).Config.Share.Username
			if username == "" {
				return fmt.Errorf("share.username is not configured")
			}
			key := credential.ShareInboxKey(username)

			if remove {
				if err := credential.Delete(key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed password for %s\n", username)
				return nil
			}

			password, err := askSecret(cmd.InOrStdin(), username)
			if err != nil {
				return err
			}
			if err := credential.Set(key, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored password for %s\n", username)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "delete", false, "Remove the stored password instead")

	return cmd
}

// askSecret prompts with a masked huh input on a terminal and falls back to
// reading one line otherwise.
func askSecret(in io.Reader, username string) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return readSecret(in)
	}

	var password string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Mailbox password").
				Description("Stored in the system keyring for " + username).
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		),
	).WithInput(f)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return password, nil
}

func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("empty password")
	}
	return line, nil
}

func printResult(w io.Writer, res share.Result) {
	fmt.Fprintf(w, "Imported %d, skipped %d, failed %d\n", res.Created, res.Skipped, res.Failed)
}

func newWatchCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stay running, announcing reminders as they come due",
		Long: `Open a live view of the reminders, re-projected every second. Due
reminders are announced as they fire, and when share intake is enabled
the mailbox is polled in the background. Press x to complete the
highlighted reminder, s to snooze it and q to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *a
			ctx := cmd.Context()
			events := watch.NewEvents()

			sched := s.StartNotifications(watch.NewNotifier(events))
			header := fmt.Sprintf("Notifications %s", sched.Permission())

			if poller, err := s.StartShareIntake(); err == nil {
				go watch.ForwardResults(ctx, poller.Results(), events)
				header += fmt.Sprintf(" · share intake %s", s.Config.Share.Username)
			} else if !errors.Is(err, app.ErrShareDisabled) {
				fmt.Fprintln(cmd.ErrOrStderr(), theme.ErrorStyle.Render("share intake: "+err.Error()))
			}

			m := watch.New(ctx, s.Session,
				watch.WithClock(s.Now),
				watch.WithEvents(events),
				watch.WithHeader(header),
			)
			p := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("running watch view: %w", err)
			}
			return nil
		},
	}
}
