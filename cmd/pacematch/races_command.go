package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/pacematch/internal/domain/race"
)

func newRacesCommand(_ *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "races",
		Short: "List supported race editions and their source files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := race.NewCatalog()
			rows := make([][]string, 0)
			for _, id := range catalog.IDs() {
				r, err := catalog.Lookup(id)
				if err != nil {
					return err
				}
				rows = append(rows, []string{r.ID, r.City, strconv.Itoa(r.Year), r.OfficialFile, r.CommunityFile})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"Race", "City", "Year", "Official file", "Community file"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}))
			return nil
		},
	}
}
