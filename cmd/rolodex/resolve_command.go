package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rolodex/internal/contacts"
	"rolodex/internal/identity"
)

func identifierTypeFor(flag, value string) (identity.Type, error) {
	if strings.TrimSpace(flag) != "" {
		typ, ok := identity.ParseType(flag)
		if !ok {
			return "", fmt.Errorf("unknown identifier type %q (phone or email)", flag)
		}
		return typ, nil
	}
	if strings.Contains(value, "@") {
		return identity.TypeEmail, nil
	}
	return identity.TypePhone, nil
}

func parseSourceFlag(flag string) (contacts.Source, error) {
	source, ok := contacts.ParseSource(flag)
	if !ok {
		return "", fmt.Errorf("unknown source %q (user_provided, extracted, ai_generated)", flag)
	}
	return source, nil
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		typeFlag   string
		sourceFlag string
		confidence float64
		readOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <identifier>",
		Short: "Resolve an identifier to its canonical contact, creating one on first sight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args[0]
			typ, err := identifierTypeFor(typeFlag, raw)
			if err != nil {
				return err
			}

			return ctx.withApp(func(a *app) error {
				out := cmd.OutOrStdout()

				if readOnly {
					res, err := a.resolver.Resolve(cmd.Context(), typ, raw)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s\t%s\n", res.ContactID, res.Normalized)
					return nil
				}

				source, err := parseSourceFlag(sourceFlag)
				if err != nil {
					return err
				}
				res, err := a.resolver.ResolveOrCreate(cmd.Context(), typ, raw, source, confidence)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Contact:    %s\n", res.ContactID)
				fmt.Fprintf(out, "Normalized: %s\n", res.Normalized)
				fmt.Fprintf(out, "Created:    %s\n", yesNo(res.Created))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "Identifier type (phone or email; inferred when omitted)")
	cmd.Flags().StringVarP(&sourceFlag, "source", "s", string(contacts.SourceExtracted), "Observation source")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.8, "Observation confidence in [0,1]")
	cmd.Flags().BoolVar(&readOnly, "lookup", false, "Only look up, never create")
	return cmd
}
