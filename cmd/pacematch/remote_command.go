package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pacematch/internal/app"
	"github.com/okian/pacematch/internal/client"
)

type remoteFlags struct {
	url     string
	timeout time.Duration
}

func newRemoteCommand(_ *commandContext) *cobra.Command {
	flags := &remoteFlags{}
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Drive a running pacematch server over HTTP",
	}
	cmd.PersistentFlags().StringVar(&flags.url, "url", "http://localhost:9080", "Base URL of the server")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "HTTP request timeout")

	cmd.AddCommand(newRemoteSubmitCommand(flags))
	cmd.AddCommand(newRemoteAverageCommand(flags))
	return cmd
}

func newRemoteSubmitCommand(flags *remoteFlags) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "submit <race-id>...",
		Short: "Submit runs and wait for them to finish",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(flags.url, client.WithTimeout(flags.timeout))
			if err := c.Health(cmd.Context()); err != nil {
				return err
			}
			jobs, err := c.SubmitAll(cmd.Context(), args, workers)
			summaries := make([]app.RunSummary, 0, len(jobs))
			for _, j := range jobs {
				if j.Summary != nil {
					summaries = append(summaries, *j.Summary)
				}
			}
			if len(summaries) > 0 {
				printSummaries(cmd, summaries)
			}
			return err
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 2, "Runs in flight at once")
	return cmd
}

func newRemoteAverageCommand(flags *remoteFlags) *cobra.Command {
	var (
		raceID string
		sex    string
		age    int
	)
	cmd := &cobra.Command{
		Use:   "average",
		Short: "Query the server's average finish time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var agePtr *int
			if cmd.Flags().Changed("age") {
				agePtr = &age
			}
			c := client.New(flags.url, client.WithTimeout(flags.timeout))
			avg, err := c.Average(cmd.Context(), raceID, sex, agePtr)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"Runners", "Average", "Seconds"},
				[][]string{{strconv.Itoa(avg.Count), avg.AverageTime, fmt.Sprintf("%.1f", avg.AverageSeconds)}},
				[]columnAlignment{alignRight, alignRight, alignRight}))
			return nil
		},
	}
	cmd.Flags().StringVar(&raceID, "race", "", "Race id (NY19) or city code (NY)")
	cmd.Flags().StringVar(&sex, "sex", "", "M or F")
	cmd.Flags().IntVar(&age, "age", 0, "Age that must fall within the runner's bracket")
	return cmd
}
