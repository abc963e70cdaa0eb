package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/pacematch/internal/app"
	"github.com/okian/pacematch/internal/domain/dataset"
	"github.com/okian/pacematch/internal/domain/finishtime"
)

func newAverageCommand(ctx *commandContext) *cobra.Command {
	var (
		raceID string
		sex    string
		age    int
	)

	cmd := &cobra.Command{
		Use:   "average",
		Short: "Average finish time of the accumulated matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := dataset.Filter{
				Race: strings.ToUpper(strings.TrimSpace(raceID)),
				Sex:  strings.ToUpper(strings.TrimSpace(sex)),
			}
			if cmd.Flags().Changed("age") {
				f.Age = &age
			}
			return ctx.withService(cmd, func(svc *app.Service) error {
				ds, err := svc.Dataset(cmd.Context())
				if err != nil {
					return err
				}
				avg, n, err := ds.AverageFinishTime(f)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(out,
					[]string{"Race", "Sex", "Age", "Runners", "Average", "Seconds"},
					[][]string{{
						orAll(f.Race), orAll(f.Sex), ageLabel(f.Age),
						fmt.Sprint(n), finishtime.ToText(int(math.Round(avg))), fmt.Sprintf("%.1f", avg),
					}},
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&raceID, "race", "", "Race id (NY19) or city code (NY)")
	cmd.Flags().StringVar(&sex, "sex", "", "M or F")
	cmd.Flags().IntVar(&age, "age", 0, "Age that must fall within the runner's bracket")

	return cmd
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

func ageLabel(age *int) string {
	if age == nil {
		return "all"
	}
	return fmt.Sprint(*age)
}
