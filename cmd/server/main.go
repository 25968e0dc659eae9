package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// main wires the vouchd commands. Business logic lives in internal packages.
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "vouchd",
		Short:         "Vouch reputation credential service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newServeCommand(&configFile),
		newMigrateCommand(&configFile),
		newTokenCommand(&configFile),
	)
	return root
}
