package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rolodex/internal/contacts"
)

func newAttemptsCommand(ctx *commandContext) *cobra.Command {
	attemptsCmd := &cobra.Command{
		Use:   "attempts",
		Short: "Track collection attempts",
	}
	attemptsCmd.AddCommand(newAttemptStartCommand(ctx))
	attemptsCmd.AddCommand(newAttemptCompleteCommand(ctx))
	attemptsCmd.AddCommand(newAttemptListCommand(ctx))
	return attemptsCmd
}

func newAttemptStartCommand(ctx *commandContext) *cobra.Command {
	var (
		chatGUID string
		details  string
	)

	cmd := &cobra.Command{
		Use:   "start <contact-id> <type>",
		Short: "Open a pending collection attempt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				attemptID, err := a.tracker.StartAttempt(cmd.Context(), args[0], chatGUID, args[1], details)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Attempt %d opened (pending)\n", attemptID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chatGUID, "chat", "", "Chat the attempt happens in")
	cmd.Flags().StringVar(&details, "details", "", "Free-form attempt payload")
	return cmd
}

func newAttemptCompleteCommand(ctx *commandContext) *cobra.Command {
	var details string

	cmd := &cobra.Command{
		Use:   "complete <attempt-id> <successful|failed>",
		Short: "Record the terminal outcome of an attempt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			attemptID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse attempt id %q: %w", args[0], err)
			}
			status, ok := contacts.ParseAttemptStatus(args[1])
			if !ok || !status.IsTerminal() {
				return fmt.Errorf("status must be successful or failed, got %q", args[1])
			}

			return ctx.withApp(func(a *app) error {
				if err := a.tracker.CompleteAttempt(cmd.Context(), attemptID, status, details); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Attempt %d completed (%s)\n", attemptID, status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&details, "details", "", "Outcome details; empty keeps the original payload")
	return cmd
}

func newAttemptListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <contact-id>",
		Short: "List a contact's attempts, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				attempts, err := a.tracker.Attempts(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(attempts) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No attempts recorded")
					return nil
				}

				rows := make([][]string, 0, len(attempts))
				for _, attempt := range attempts {
					completed := ""
					if attempt.CompletedAt != nil {
						completed = attempt.CompletedAt.Local().Format("2006-01-02 15:04")
					}
					rows = append(rows, []string{
						strconv.FormatInt(attempt.ID, 10),
						attempt.Type,
						string(attempt.Status),
						attempt.ChatGUID,
						attempt.RequestedAt.Local().Format("2006-01-02 15:04"),
						completed,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Attempt", "Type", "Status", "Chat", "Requested", "Completed"}, rows, 1))
				return nil
			})
		},
	}
}
