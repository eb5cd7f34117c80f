package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newAttributeCommand(ctx *commandContext) *cobra.Command {
	attrCmd := &cobra.Command{
		Use:   "attribute",
		Short: "Record and inspect contact attributes",
	}
	attrCmd.AddCommand(newAttributeSetCommand(ctx))
	attrCmd.AddCommand(newAttributeHistoryCommand(ctx))
	return attrCmd
}

func newAttributeSetCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceFlag string
		confidence float64
	)

	cmd := &cobra.Command{
		Use:   "set <contact-id> <type> <value>",
		Short: "Record an attribute observation",
		Long: "Records one observation of a typed fact. History is preserved; the\n" +
			"current value per type follows source precedence, then confidence,\n" +
			"then recency.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseSourceFlag(sourceFlag)
			if err != nil {
				return err
			}

			return ctx.withApp(func(a *app) error {
				attr, err := a.store.UpsertAttribute(cmd.Context(), args[0], args[1], args[2], source, confidence)
				if err != nil {
					return err
				}
				verdict := "superseded"
				if attr.IsCurrent {
					verdict = "current"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s=%q (%s, %.2f) [%s]\n",
					attr.Type, attr.Value, attr.Source, attr.Confidence, verdict)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "user_provided", "Observation source")
	cmd.Flags().Float64Var(&confidence, "confidence", 1.0, "Observation confidence in [0,1]")
	return cmd
}

func newAttributeHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history <contact-id> <type>",
		Short: "Show every recorded observation of an attribute type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				history, err := a.store.AttributeHistory(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if len(history) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No observations recorded")
					return nil
				}

				rows := make([][]string, 0, len(history))
				for _, attr := range history {
					rows = append(rows, []string{
						attr.Value,
						string(attr.Source),
						strconv.FormatFloat(attr.Confidence, 'f', 2, 64),
						yesNo(attr.IsCurrent),
						attr.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Value", "Source", "Confidence", "Current", "Recorded"}, rows, 3))
				return nil
			})
		},
	}
}

func newCategoryCommand(ctx *commandContext) *cobra.Command {
	var confidence float64

	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage contact category labels",
	}

	addCmd := &cobra.Command{
		Use:   "add <contact-id> <category>",
		Short: "Attach a weighted category label to a contact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if err := a.store.UpsertCategory(cmd.Context(), args[0], args[1], confidence); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added category %q\n", args[1])
				return nil
			})
		},
	}
	addCmd.Flags().Float64Var(&confidence, "confidence", 1.0, "Label confidence in [0,1]")

	categoryCmd.AddCommand(addCmd)
	return categoryCmd
}
