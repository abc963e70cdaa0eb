package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pacematch/internal/app"
	"github.com/okian/pacematch/internal/domain/candidate"
	"github.com/okian/pacematch/internal/domain/linkage"
)

func newLinkCommand(ctx *commandContext) *cobra.Command {
	var (
		tolerance  int
		threshold  float64
		partitions int
	)

	cmd := &cobra.Command{
		Use:   "link <race-id>...",
		Short: "Link one or more races and append the matches to the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			if cmd.Flags().Changed("tolerance") {
				cfg.TimeToleranceSeconds = tolerance
			}
			if cmd.Flags().Changed("threshold") {
				cfg.NameSimilarityThreshold = threshold
			}
			if cmd.Flags().Changed("partitions") {
				cfg.Partitions = partitions
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			engine := linkage.New(
				linkage.WithTimeTolerance(cfg.TimeToleranceSeconds),
				linkage.WithNameThreshold(cfg.NameSimilarityThreshold),
			)
			return ctx.withService(cmd, func(svc *app.Service) error {
				summaries := make([]app.RunSummary, 0, len(args))
				for _, id := range args {
					summary, err := svc.Run(cmd.Context(), id)
					if err != nil {
						return fmt.Errorf("link %s: %w", id, err)
					}
					summaries = append(summaries, summary)
				}
				printSummaries(cmd, summaries)
				return nil
			}, app.WithEngine(engine), app.WithPartitions(cfg.Partitions))
		},
	}

	cmd.Flags().IntVar(&tolerance, "tolerance", candidate.DefaultTolerance, "Finish time tolerance in seconds")
	cmd.Flags().Float64Var(&threshold, "threshold", linkage.DefaultNameThreshold, "Minimum Jaro-Winkler name similarity")
	cmd.Flags().IntVar(&partitions, "partitions", 1, "Split community records across N parallel partitions")

	return cmd
}

func printSummaries(cmd *cobra.Command, summaries []app.RunSummary) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.RaceID,
			strconv.Itoa(s.Official),
			strconv.Itoa(s.Community),
			strconv.Itoa(s.Dropped),
			strconv.Itoa(s.Matched),
			s.Duration.Round(time.Millisecond).String(),
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Race", "Official", "Community", "Dropped", "Matched", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}))
}
