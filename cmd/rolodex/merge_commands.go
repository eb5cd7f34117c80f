package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCandidatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <contact-id>",
		Short: "List likely duplicates of a contact, strongest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				candidates, err := a.engine.FindCandidates(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(candidates) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No merge candidates above threshold")
					return nil
				}

				rows := make([][]string, 0, len(candidates))
				for _, candidate := range candidates {
					view, err := a.store.GetContactView(cmd.Context(), candidate.ContactID)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						candidate.ContactID,
						view.DisplayName(),
						strconv.FormatFloat(candidate.Score, 'f', 3, 64),
						candidate.CreatedAt.Local().Format("2006-01-02"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Candidate", "Name", "Score", "Created"}, rows, 3))
				return nil
			})
		},
	}
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <primary-id> <secondary-id>",
		Short: "Merge the secondary contact into the primary",
		Long: "Re-parents every identifier, attribute, category, and collection\n" +
			"attempt from the secondary contact onto the primary, then deletes the\n" +
			"secondary. The merge is atomic: it either completes fully or leaves\n" +
			"both contacts untouched.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				summary, err := a.engine.Merge(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Merged %s into %s\n", summary.SecondaryID, summary.PrimaryID)
				fmt.Fprintf(out, "  identifiers moved:     %d\n", summary.IdentifiersMoved)
				if summary.IdentifiersDiscarded > 0 {
					fmt.Fprintf(out, "  identifiers discarded: %d\n", summary.IdentifiersDiscarded)
				}
				fmt.Fprintf(out, "  attributes moved:      %d\n", summary.AttributesMoved)
				fmt.Fprintf(out, "  categories moved:      %d\n", summary.CategoriesMoved)
				fmt.Fprintf(out, "  attempts moved:        %d\n", summary.AttemptsMoved)
				fmt.Fprintf(out, "  messages:              %d total, %d unread\n", summary.TotalMessages, summary.UnreadMessages)
				return nil
			})
		},
	}
}
