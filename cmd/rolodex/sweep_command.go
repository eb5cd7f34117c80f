package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"rolodex/internal/dedupe"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var daemon bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Scan all contacts for duplicate candidates",
		Long: "Scores every contact pair and reports those above the merge\n" +
			"threshold. With --daemon the sweep repeats on the configured\n" +
			"interval, holding a file lock so only one sweeper runs per database.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if !daemon {
					report, err := a.sweeper.Run(cmd.Context())
					if err != nil {
						return err
					}
					printSweepReport(cmd, report)
					return nil
				}

				lock := flock.New(a.cfg.LockPath())
				ok, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire sweep lock: %w", err)
				}
				if !ok {
					return errors.New("another sweeper is already running against this database")
				}
				defer func() {
					_ = lock.Unlock()
				}()

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				fmt.Fprintf(cmd.OutOrStdout(), "Sweeping every %s; Ctrl-C to stop\n", a.cfg.SweepInterval())
				err = a.sweeper.RunForever(runCtx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&daemon, "daemon", false, "Loop on the configured interval under a file lock")
	return cmd
}

func printSweepReport(cmd *cobra.Command, report *dedupe.SweepReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sweep %s: %d contacts scanned in %s\n",
		report.SweepID, report.ContactsScanned, report.Duration.Round(time.Millisecond))
	if len(report.Pairs) == 0 {
		fmt.Fprintln(out, "No duplicate candidates above threshold")
		return
	}

	rows := make([][]string, 0, len(report.Pairs))
	for _, pair := range report.Pairs {
		rows = append(rows, []string{
			pair.ContactID,
			pair.CandidateID,
			strconv.FormatFloat(pair.Score, 'f', 3, 64),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Contact", "Candidate", "Score"}, rows, 3))
}
