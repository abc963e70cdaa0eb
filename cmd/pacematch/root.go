package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "pacematch",
		Short:         "Link official marathon results to community results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.flags.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVar(&ctx.flags.dataDir, "data-dir", "", "Directory holding the source files")
	flags.StringVar(&ctx.flags.store, "store", "", "Match store: csv or sqlite")
	flags.StringVar(&ctx.flags.output, "output", "", "Accumulation file (csv) or database (sqlite)")
	flags.BoolVarP(&ctx.flags.verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(newLinkCommand(ctx))
	rootCmd.AddCommand(newAverageCommand(ctx))
	rootCmd.AddCommand(newRacesCommand(ctx))
	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newRemoteCommand(ctx))

	return rootCmd
}
