package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"rolodex/internal/contacts"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		query      string
		unreadOnly bool
		sinceFlag  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := contacts.SearchFilter{Query: query}
			if unreadOnly {
				t := true
				filter.HasUnread = &t
			}
			if sinceFlag != "" {
				since, err := time.Parse("2006-01-02", sinceFlag)
				if err != nil {
					return fmt.Errorf("parse --since (want YYYY-MM-DD): %w", err)
				}
				filter.LastMessageAfter = &since
			}

			return ctx.withApp(func(a *app) error {
				results, err := a.store.SearchContacts(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No contacts found")
					return nil
				}

				rows := make([][]string, 0, len(results))
				for _, contact := range results {
					view, err := a.store.GetContactView(cmd.Context(), contact.ID)
					if err != nil {
						return err
					}
					lastMessage := ""
					if contact.LastMessageAt != nil {
						lastMessage = contact.LastMessageAt.Local().Format("2006-01-02 15:04")
					}
					rows = append(rows, []string{
						contact.ID,
						view.DisplayName(),
						strconv.FormatInt(contact.TotalMessages, 10),
						strconv.FormatInt(contact.UnreadMessages, 10),
						lastMessage,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Contact", "Name", "Messages", "Unread", "Last Message"}, rows, 3, 4))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Match against names, identifiers, and attribute values")
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only contacts with unread messages")
	cmd.Flags().StringVar(&sinceFlag, "since", "", "Only contacts messaged after this date (YYYY-MM-DD)")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <contact-id>",
		Short: "Show a contact's identifiers, attributes, categories, and attempts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				out := cmd.OutOrStdout()
				view, err := a.store.GetContactView(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "%s (%s)\n", view.DisplayName(), view.Contact.ID)
				fmt.Fprintf(out, "Messages: %d total, %d unread\n", view.Contact.TotalMessages, view.Contact.UnreadMessages)
				if view.Contact.LastMessageAt != nil {
					fmt.Fprintf(out, "Last message: %s\n", view.Contact.LastMessageAt.Local().Format(time.RFC1123))
				}

				if len(view.Identifiers) > 0 {
					rows := make([][]string, 0, len(view.Identifiers))
					for _, ident := range view.Identifiers {
						rows = append(rows, []string{
							string(ident.Type),
							ident.Value,
							strconv.FormatFloat(ident.Confidence, 'f', 2, 64),
							yesNo(ident.Verified),
						})
					}
					fmt.Fprintln(out, renderTable([]string{"Type", "Identifier", "Confidence", "Verified"}, rows, 3))
				}

				if len(view.Attributes) > 0 {
					rows := make([][]string, 0, len(view.Attributes))
					for _, attr := range view.Attributes {
						rows = append(rows, []string{
							attr.Type,
							attr.Value,
							string(attr.Source),
							strconv.FormatFloat(attr.Confidence, 'f', 2, 64),
						})
					}
					fmt.Fprintln(out, renderTable([]string{"Attribute", "Value", "Source", "Confidence"}, rows, 4))
				}

				if len(view.Categories) > 0 {
					rows := make([][]string, 0, len(view.Categories))
					for _, category := range view.Categories {
						rows = append(rows, []string{
							category.Name,
							strconv.FormatFloat(category.Confidence, 'f', 2, 64),
						})
					}
					fmt.Fprintln(out, renderTable([]string{"Category", "Confidence"}, rows, 2))
				}

				attempts, err := a.store.AttemptsForContact(cmd.Context(), view.Contact.ID)
				if err != nil {
					return err
				}
				if len(attempts) > 0 {
					rows := make([][]string, 0, len(attempts))
					for _, attempt := range attempts {
						rows = append(rows, []string{
							strconv.FormatInt(attempt.ID, 10),
							attempt.Type,
							string(attempt.Status),
							attempt.ChatGUID,
							attempt.RequestedAt.Local().Format("2006-01-02 15:04"),
						})
					}
					fmt.Fprintln(out, renderTable([]string{"Attempt", "Type", "Status", "Chat", "Requested"}, rows, 1))
				}
				return nil
			})
		},
	}
}
