package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rolodex/internal/enrichment"
	"rolodex/internal/identity"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var (
		chatGUID     string
		participants []string
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Plan an enrichment request for chat participants",
		Long: "Resolves each participant phone to a contact (creating one on first\n" +
			"sight) and opens a pending collection attempt per missing field.\n" +
			"Participants are given as phone=field1,field2; omitting the fields\n" +
			"asks for whatever the contact is still missing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(participants) == 0 {
				return fmt.Errorf("at least one --participant is required")
			}

			return ctx.withApp(func(a *app) error {
				request := enrichment.Request{
					ChatGUID:     chatGUID,
					Participants: make(map[string][]string, len(participants)),
				}
				for _, spec := range participants {
					phone, fieldList, found := strings.Cut(spec, "=")
					phone = strings.TrimSpace(phone)
					if phone == "" {
						return fmt.Errorf("participant %q: missing phone", spec)
					}

					var fields []string
					if found && strings.TrimSpace(fieldList) != "" {
						for _, field := range strings.Split(fieldList, ",") {
							if trimmed := strings.TrimSpace(field); trimmed != "" {
								fields = append(fields, trimmed)
							}
						}
					}
					request.Participants[phone] = fields
				}

				// Fill in missing-field lists for participants that did not
				// name any.
				for phone, fields := range request.Participants {
					if len(fields) > 0 {
						continue
					}
					res, err := a.resolver.Resolve(cmd.Context(), identity.TypePhone, phone)
					if err == nil {
						view, err := a.store.GetContactView(cmd.Context(), res.ContactID)
						if err != nil {
							return err
						}
						request.Participants[phone] = enrichment.MissingFields(view, nil)
						continue
					}
					// Unknown participant: everything is missing.
					request.Participants[phone] = enrichment.DefaultFields
				}

				planned, err := a.planner.PlanRequest(cmd.Context(), request)
				if err != nil {
					return err
				}
				if len(planned) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to collect")
					return nil
				}

				rows := make([][]string, 0, len(planned))
				for _, attempt := range planned {
					rows = append(rows, []string{
						fmt.Sprintf("%d", attempt.AttemptID),
						attempt.ContactID,
						attempt.Phone,
						attempt.Field,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Attempt", "Contact", "Phone", "Field"}, rows, 1))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chatGUID, "chat", "", "Chat the request will be sent in")
	cmd.Flags().StringArrayVar(&participants, "participant", nil, "Participant as phone=field1,field2 (repeatable)")
	_ = cmd.MarkFlagRequired("chat")
	return cmd
}
