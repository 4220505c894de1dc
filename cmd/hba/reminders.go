package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewReminderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reminder",
		Short:   "Manage brew reminders",
		GroupID: gBasic,
		Long: `Manage brew reminders.

Schedules are cron expressions with optional seconds, or descriptors such as
"@daily" and "@every 12h".`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add [schedule] [message...]",
			Short: "Add a reminder",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := apiClient.AddReminder(args[0], strings.Join(args[1:], " "))
				if err != nil {
					return fmt.Errorf("failed to add reminder: %w", err)
				}
				cmd.Println(T("ReminderAdded", map[string]any{"ID": r.ID}))
				cmd.Printf("  next: %s\n", bold("%s", r.NextRun.Local().Format("2006-01-02 15:04:05")))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List reminders",
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := apiClient.GetReminders()
				if err != nil {
					return fmt.Errorf("failed to get reminders: %w", err)
				}
				if len(list) == 0 {
					cmd.Println(T("NoReminders", nil))
					return nil
				}
				for _, r := range list {
					cmd.Printf("%s  %-16s  %s  %s\n", r.ID, r.Schedule,
						bold("%s", r.NextRun.Local().Format("2006-01-02 15:04:05")), r.Message)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove [id]",
			Short: "Remove a reminder",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := apiClient.RemoveReminder(args[0]); err != nil {
					return err
				}
				cmd.Println(T("ReminderRemoved", map[string]any{"ID": args[0]}))
				return nil
			},
		},
	)

	return cmd
}
